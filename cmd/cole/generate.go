package main

import (
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wzqhbustb/cole/storage/column"
	"github.com/wzqhbustb/cole/storage/format"
)

// rowGroupSize is how many generated rows go into each row group
const rowGroupSize = 10000

// syntheticSchema covers every column type and every encoding (not every
// legal pairing: INT32 PLAIN/DELTA and INT64 RLE are absent)
func syntheticSchema() format.Schema {
	return format.NewSchema(
		format.ColumnSchema{Name: "id", Type: format.TypeInt64, Encoding: format.EncodingPlain},
		format.ColumnSchema{Name: "value", Type: format.TypeInt64, Encoding: format.EncodingDelta},
		format.ColumnSchema{Name: "category", Type: format.TypeInt32, Encoding: format.EncodingRLE},
		format.ColumnSchema{Name: "region", Type: format.TypeString, Encoding: format.EncodingDictionary},
		format.ColumnSchema{Name: "status", Type: format.TypeString, Encoding: format.EncodingDictionary},
		format.ColumnSchema{Name: "trace_id", Type: format.TypeString, Encoding: format.EncodingPlain},
	)
}

var (
	regions  = []string{"north", "south", "east", "west"}
	statuses = []string{"active", "pending", "closed"}
)

// generateDataset writes numRows of synthetic data in row groups of
// rowGroupSize. The same seed reproduces the same file byte for byte.
func generateDataset(path string, numRows int, seed int64, logger *zap.Logger) error {
	rng := rand.New(rand.NewSource(seed))

	writer, err := column.NewWriter(path, syntheticSchema())
	if err != nil {
		return err
	}
	defer writer.Close()

	written := 0
	for written < numRows {
		chunk := numRows - written
		if chunk > rowGroupSize {
			chunk = rowGroupSize
		}

		ids := make([]int64, chunk)
		values := make([]int64, chunk)
		categories := make([]int32, chunk)
		regionVals := make([]string, chunk)
		statusVals := make([]string, chunk)
		traceIDs := make([]string, chunk)

		for i := 0; i < chunk; i++ {
			ids[i] = int64(written + i)
			values[i] = rng.Int63n(10001)
			categories[i] = int32(rng.Intn(5) + 1)
			regionVals[i] = regions[rng.Intn(len(regions))]
			statusVals[i] = statuses[rng.Intn(len(statuses))]

			id, err := uuid.NewRandomFromReader(rng)
			if err != nil {
				return err
			}
			traceIDs[i] = id.String()
		}

		if err := writer.WriteInt64Column(0, ids); err != nil {
			return err
		}
		if err := writer.WriteInt64Column(1, values); err != nil {
			return err
		}
		if err := writer.WriteInt32Column(2, categories); err != nil {
			return err
		}
		if err := writer.WriteStringColumn(3, regionVals); err != nil {
			return err
		}
		if err := writer.WriteStringColumn(4, statusVals); err != nil {
			return err
		}
		if err := writer.WriteStringColumn(5, traceIDs); err != nil {
			return err
		}
		if err := writer.FlushRowGroup(); err != nil {
			return err
		}

		written += chunk
		logger.Debug("row group flushed", zap.Int("rows", written))
	}

	return writer.Close()
}
