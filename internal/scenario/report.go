package scenario

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// PrintTable writes one row per attempt followed by the totals
func (s *Summary) PrintTable(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "From", "To", "Result"})
	table.SetBorder(true)

	for _, item := range s.Items {
		table.Append([]string{
			fmt.Sprintf("%d", item.Index),
			item.From.Hex(),
			item.To.Hex(),
			itemOutcome(item),
		})
	}

	status := "completed"
	if s.Aborted {
		status = "aborted"
	}
	table.SetFooter([]string{
		s.Scenario,
		status,
		fmt.Sprintf("%d sent / %d failed", s.Succeeded(), s.Failed()),
		s.Duration.Round(time.Millisecond).String(),
	})
	table.Render()
}

func itemOutcome(item ItemResult) string {
	if !item.Failed() {
		return item.TxHash.Hex()
	}
	var itemErr *PerItemError
	if errors.As(item.Err, &itemErr) {
		return "FAILED: " + itemErr.Err.Error()
	}
	return "FAILED: " + item.Err.Error()
}
