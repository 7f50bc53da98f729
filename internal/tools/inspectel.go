package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomasbasham/chrome-mcp/internal/inspect"
	"github.com/tomasbasham/chrome-mcp/internal/synth"
)

// maxVerifiedCandidates bounds how many verified candidates an
// inspect_element call lists. Candidates that fail verification do not count
// towards it, so more queries than this may be issued.
const maxVerifiedCandidates = 5

func (r *Registry) runInspectElement(ctx context.Context, args Args) (string, error) {
	conn, err := r.manager.ConnectionOrThrow(args.connectionID())
	if err != nil {
		return "", err
	}
	description := args.String("description", "")
	if description == "" {
		return "", errRequired("description")
	}

	opCtx, cancel := r.manager.OpContext(conn)
	defer cancel()

	inv, err := inspect.PageInventory(opCtx)
	if err != nil {
		return "", err
	}

	ranked := synth.RankSelectors(inv, description, args.Bool("strict_stability", false))
	if len(ranked) == 0 {
		return fmt.Sprintf("No selector candidates for %q.\n%s", description,
			synth.SuggestSelectors(inv, description)), nil
	}

	// Optional spatial constraint: only keep candidates on the given side of
	// the reference element.
	var nearPos *inspect.Position
	nearDirection := ""
	if near := args.Object("near"); near != nil {
		refSelector := near.String("selector", "")
		nearDirection = near.String("direction", "")
		if refSelector != "" {
			ref, refErr := inspect.Query(opCtx, refSelector, 1, "", true)
			if refErr == nil && len(ref.Elements) > 0 {
				nearPos = &ref.Elements[0].Position
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Selector candidates for %q:\n", description)
	shown := 0
	for _, c := range ranked {
		if shown >= maxVerifiedCandidates {
			break
		}
		res, qErr := inspect.Query(opCtx, c.Selector, 1, "", true)
		if qErr != nil || res.Found == 0 {
			continue
		}
		if nearPos != nil && len(res.Elements) > 0 &&
			!inDirection(*nearPos, res.Elements[0].Position, nearDirection) {
			continue
		}
		shown++
		fmt.Fprintf(&b, "%d. %s (%d matches, %s, matched %q)\n",
			shown, c.Selector, res.Found, synth.StabilityName(c.Stability), strings.Join(c.Matches, ", "))
	}
	if shown == 0 {
		return fmt.Sprintf("No selector candidates for %q survived verification.", description), nil
	}
	return b.String(), nil
}

// inDirection reports whether candidate sits on the named side of ref, by
// rect centers.
func inDirection(ref, candidate inspect.Position, direction string) bool {
	refX := ref.X + ref.Width/2
	refY := ref.Y + ref.Height/2
	candX := candidate.X + candidate.Width/2
	candY := candidate.Y + candidate.Height/2

	switch direction {
	case "above":
		return candY < refY
	case "below":
		return candY > refY
	case "left":
		return candX < refX
	case "right":
		return candX > refX
	default:
		return true
	}
}
