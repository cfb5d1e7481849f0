package datasource

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/rxtech-lab/argo-dca/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DatasourceUtilsTestSuite struct {
	suite.Suite
}

func TestDatasourceUtilsSuite(t *testing.T) {
	suite.Run(t, new(DatasourceUtilsTestSuite))
}

func (suite *DatasourceUtilsTestSuite) TestViewQuery() {
	parquet := viewQuery("data/VOO_*.parquet")
	suite.Contains(parquet, "read_parquet('data/VOO_*.parquet')")

	csv := viewQuery("/tmp/VOO.CSV")
	suite.Contains(csv, "read_csv_auto('/tmp/VOO.CSV', header = true)")
	suite.Contains(csv, "'VOO' AS symbol")

	quoted := viewQuery("it's.parquet")
	suite.Contains(quoted, "read_parquet('it''s.parquet')")
}

func (suite *DatasourceUtilsTestSuite) TestApplyFilter() {
	sq := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	query, args, err := applyFilter(sq.Select("time").From("market_data"), NoFilter()).ToSql()
	suite.Require().NoError(err)
	suite.Equal("SELECT time FROM market_data", query)
	suite.Empty(args)

	filter := ForSymbol("VOO")
	filter.Start = optional.Some(start)

	query, args, err = applyFilter(sq.Select("time").From("market_data"), filter).ToSql()
	suite.Require().NoError(err)
	suite.Equal("SELECT time FROM market_data WHERE symbol = $1 AND time >= $2", query)
	suite.Equal([]any{"VOO", start}, args)
}

func (suite *DatasourceUtilsTestSuite) TestForSymbolEmpty() {
	suite.True(ForSymbol("").Symbol.IsNone())
}

func (suite *DatasourceUtilsTestSuite) TestValidateRecord() {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	suite.NoError(validateRecord(types.NewDailyRecord(day, 10, 11, 9, 10)))

	err := validateRecord(types.NewDailyRecord(day, 10, 11, 0, 10))
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPrice))
	suite.Contains(err.Error(), "non-positive low price on 2024-03-04")
}
