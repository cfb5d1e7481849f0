package writer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-dca/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-dca/internal/logger"
	"github.com/rxtech-lab/argo-dca/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
	tempDir string
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (suite *DuckDBWriterTestSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
}

func (suite *DuckDBWriterTestSuite) TestNewDuckDBWriter() {
	outputPath := filepath.Join(suite.tempDir, "test.parquet")
	writer := NewDuckDBWriter(outputPath)

	suite.NotNil(writer)

	duckWriter, ok := writer.(*DuckDBWriter)
	suite.True(ok)
	suite.Equal(outputPath, duckWriter.outputPath)
	suite.Equal(outputPath, writer.GetOutputPath())
	suite.Nil(duckWriter.db)
	suite.Nil(duckWriter.tx)
	suite.Nil(duckWriter.stmt)
}

func (suite *DuckDBWriterTestSuite) TestInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "test_init.parquet"))

	suite.Require().NoError(writer.Initialize())

	duckWriter := writer.(*DuckDBWriter)
	suite.NotNil(duckWriter.db)
	suite.NotNil(duckWriter.tx)
	suite.NotNil(duckWriter.stmt)

	// A second Initialize keeps the open transaction.
	suite.NoError(writer.Initialize())
	suite.NoError(writer.Close())
	suite.Nil(duckWriter.db)
}

func (suite *DuckDBWriterTestSuite) TestWriteBeforeInitialize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "uninitialized.parquet"))

	err := writer.Write("SPY", types.NewDailyRecord(time.Now(), 1, 1, 1, 1))
	suite.Error(err)
	suite.Contains(err.Error(), "writer not initialized")

	_, err = writer.Finalize()
	suite.Error(err)
}

func (suite *DuckDBWriterTestSuite) TestWriteAndReadBack() {
	outputPath := filepath.Join(suite.tempDir, "SPY_daily.parquet")
	writer := NewDuckDBWriter(outputPath)
	suite.Require().NoError(writer.Initialize())

	defer writer.Close()

	base := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	// Written out of order; the export sorts by time.
	suite.Require().NoError(writer.Write("SPY", types.NewDailyRecord(base.AddDate(0, 0, 2), 512, 515, 510, 514)))
	suite.Require().NoError(writer.Write("SPY", types.NewDailyRecord(base, 507, 510, 505, 509)))
	suite.Require().NoError(writer.Write("SPY", types.NewDailyRecord(base.AddDate(0, 0, 1), 509, 513, 508, 512)))
	suite.Equal(3, writer.(*DuckDBWriter).Written())

	path, err := writer.Finalize()
	suite.Require().NoError(err)
	suite.Equal(outputPath, path)

	_, err = os.Stat(outputPath)
	suite.Require().NoError(err)

	ds, err := datasource.NewDataSource(":memory:", logger.NewNopLogger())
	suite.Require().NoError(err)

	defer ds.Close()

	suite.Require().NoError(ds.Initialize(outputPath))

	history, err := ds.ReadHistory(datasource.ForSymbol("SPY"))
	suite.Require().NoError(err)
	suite.Require().Equal(3, history.Len())

	suite.True(history[0].Time.Equal(base))
	suite.Equal(507.0, history[0].Open.InexactFloat64())
	suite.Equal(514.0, history[2].Close.InexactFloat64())

	symbols, err := ds.Symbols()
	suite.Require().NoError(err)
	suite.Equal([]string{"SPY"}, symbols)
}

func (suite *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	writer := NewDuckDBWriter(filepath.Join(suite.tempDir, "abandoned.parquet"))
	suite.Require().NoError(writer.Initialize())
	suite.Require().NoError(writer.Write("SPY", types.NewDailyRecord(time.Now(), 1, 1, 1, 1)))

	suite.NoError(writer.Close())

	_, err := os.Stat(filepath.Join(suite.tempDir, "abandoned.parquet"))
	suite.True(os.IsNotExist(err))
}
