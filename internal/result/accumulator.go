package result

import (
	"fmt"

	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/shopspring/decimal"
)

// Field selects one of the summed snapshot values.
type Field int

const (
	FieldOrderCount Field = iota
	FieldTotalSpent
	FieldFinalValuation
	FieldNetReturn
	FieldPercentReturn
)

func (f Field) String() string {
	switch f {
	case FieldOrderCount:
		return "order_count"
	case FieldTotalSpent:
		return "total_spent"
	case FieldFinalValuation:
		return "final_valuation"
	case FieldNetReturn:
		return "net_return"
	case FieldPercentReturn:
		return "percent_return"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// Accumulator sums the trial snapshots of one strategy. Sums only grow; an
// Accumulator has a single writer.
type Accumulator struct {
	name   string
	trials int
	sums   [5]decimal.Decimal
}

// NewAccumulator creates an empty accumulator for the named strategy.
func NewAccumulator(name string) *Accumulator {
	return &Accumulator{
		name:   name,
		trials: 0,
		sums:   [5]decimal.Decimal{},
	}
}

// Name returns the strategy name.
func (a *Accumulator) Name() string {
	return a.name
}

// Trials returns the number of accumulated snapshots.
func (a *Accumulator) Trials() int {
	return a.trials
}

// Accumulate adds one trial snapshot to the running sums.
func (a *Accumulator) Accumulate(snapshot types.ResultSnapshot) {
	a.sums[FieldOrderCount] = a.sums[FieldOrderCount].Add(decimal.NewFromInt(int64(snapshot.OrderCount)))
	a.sums[FieldTotalSpent] = a.sums[FieldTotalSpent].Add(snapshot.TotalSpent)
	a.sums[FieldFinalValuation] = a.sums[FieldFinalValuation].Add(snapshot.FinalValuation)
	a.sums[FieldNetReturn] = a.sums[FieldNetReturn].Add(snapshot.NetReturn)
	a.sums[FieldPercentReturn] = a.sums[FieldPercentReturn].Add(snapshot.PercentReturn)
	a.trials++
}

// Sum returns the running sum of a field.
func (a *Accumulator) Sum(field Field) (decimal.Decimal, error) {
	if field < FieldOrderCount || field > FieldPercentReturn {
		return decimal.Zero, errors.Newf(errors.ErrCodeInvalidParameter, "unknown result field %s", field)
	}

	return a.sums[field], nil
}

// Average returns sum(field) / trials. It fails with ErrCodeEmptyAccumulator
// before the first Accumulate.
func (a *Accumulator) Average(field Field) (decimal.Decimal, error) {
	sum, err := a.Sum(field)
	if err != nil {
		return decimal.Zero, err
	}

	if a.trials == 0 {
		return decimal.Zero, a.emptyError()
	}

	return sum.Div(decimal.NewFromInt(int64(a.trials))), nil
}

// RankingKey returns sum(net return) / sum(total spent): the aggregate return
// on the capital actually deployed. It is 0 when nothing was spent in any trial
// and fails with ErrCodeEmptyAccumulator before the first Accumulate.
func (a *Accumulator) RankingKey() (decimal.Decimal, error) {
	if a.trials == 0 {
		return decimal.Zero, a.emptyError()
	}

	spent := a.sums[FieldTotalSpent]
	if spent.IsZero() {
		return decimal.Zero, nil
	}

	return a.sums[FieldNetReturn].Div(spent), nil
}

// Averages returns every averaged field plus the ranking key.
func (a *Accumulator) Averages() (types.AveragedResult, error) {
	if a.trials == 0 {
		return types.AveragedResult{}, a.emptyError()
	}

	averages := make([]decimal.Decimal, len(a.sums))

	for field := range a.sums {
		avg, err := a.Average(Field(field))
		if err != nil {
			return types.AveragedResult{}, err
		}

		averages[field] = avg
	}

	key, err := a.RankingKey()
	if err != nil {
		return types.AveragedResult{}, err
	}

	return types.AveragedResult{
		Name:              a.name,
		Trials:            a.trials,
		AvgOrderCount:     averages[FieldOrderCount],
		AvgTotalSpent:     averages[FieldTotalSpent],
		AvgFinalValuation: averages[FieldFinalValuation],
		AvgNetReturn:      averages[FieldNetReturn],
		AvgPercentReturn:  averages[FieldPercentReturn],
		RankingKey:        key,
	}, nil
}

func (a *Accumulator) emptyError() error {
	return errors.Newf(errors.ErrCodeEmptyAccumulator, "no trials accumulated for %q", a.name)
}
