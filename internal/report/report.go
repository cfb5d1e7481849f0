// Package report renders averaged backtest results as console tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/shopspring/decimal"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	gainStyle   = cellStyle.Foreground(lipgloss.Color("42"))
	lossStyle   = cellStyle.Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

var hundred = decimal.NewFromInt(100)

var resultHeaders = []string{
	"Strategy",
	"Trials",
	"Avg orders",
	"Avg spent",
	"Avg final value",
	"Avg net return",
	"Avg % return",
	"Aggregate % return",
}

var rankingHeaders = []string{
	"Rank",
	"Interval (days)",
	"Avg orders",
	"Avg spent",
	"Avg net return",
	"Aggregate % return",
}

// Money formats an amount with two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent formats a ratio as a percentage with two decimals.
func Percent(ratio decimal.Decimal) string {
	return ratio.Mul(hundred).StringFixed(2) + "%"
}

// Results renders one row per strategy, in the given order.
func Results(title string, results []types.AveragedResult) string {
	rows := make([][]string, 0, len(results))
	signs := make([]int, 0, len(results))

	for _, r := range results {
		rows = append(rows, []string{
			r.Name,
			strconv.Itoa(r.Trials),
			r.AvgOrderCount.StringFixed(2),
			Money(r.AvgTotalSpent),
			Money(r.AvgFinalValuation),
			Money(r.AvgNetReturn),
			Percent(r.AvgPercentReturn),
			Percent(r.RankingKey),
		})
		signs = append(signs, r.RankingKey.Sign())
	}

	return render(title, resultHeaders, rows, signs, len(resultHeaders)-1)
}

// Ranking renders the retained intervals of a best-interval search, best first.
func Ranking(title string, ranked []types.RankedInterval) string {
	rows := make([][]string, 0, len(ranked))
	signs := make([]int, 0, len(ranked))

	for i, r := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(r.Interval),
			r.Result.AvgOrderCount.StringFixed(2),
			Money(r.Result.AvgTotalSpent),
			Money(r.Result.AvgNetReturn),
			Percent(r.Result.RankingKey),
		})
		signs = append(signs, r.Result.RankingKey.Sign())
	}

	return render(title, rankingHeaders, rows, signs, len(rankingHeaders)-1)
}

// Best returns the result with the largest ranking key. Earlier results win ties.
func Best(results []types.AveragedResult) (types.AveragedResult, bool) {
	if len(results) == 0 {
		return types.AveragedResult{}, false
	}

	best := results[0]
	for _, r := range results[1:] {
		if r.RankingKey.GreaterThan(best.RankingKey) {
			best = r
		}
	}

	return best, true
}

// Summary is a one-line description of the best result.
func Summary(results []types.AveragedResult) string {
	best, ok := Best(results)
	if !ok {
		return "No results."
	}

	return fmt.Sprintf("Best strategy: %s (aggregate return %s over %d trials)", best.Name, Percent(best.RankingKey), best.Trials)
}

// Write renders the results table followed by the summary line.
func Write(w io.Writer, title string, results []types.AveragedResult) error {
	_, err := fmt.Fprintf(w, "%s\n%s\n", Results(title, results), Summary(results))

	return err
}

// render colors the return column green or red by the sign of each row.
func render(title string, headers []string, rows [][]string, signs []int, returnColumn int) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == returnColumn && row >= 0 && row < len(signs) && signs[row] > 0:
				return gainStyle
			case col == returnColumn && row >= 0 && row < len(signs) && signs[row] < 0:
				return lossStyle
			default:
				return cellStyle
			}
		})

	var sb strings.Builder

	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(t.Render())

	return sb.String()
}
