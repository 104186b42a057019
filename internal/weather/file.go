package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/haukened/hearth/internal/app"
)

// FileSource reads a captured forecast payload from disk instead of the
// network. Used in development so the dashboard works without credentials.
type FileSource struct {
	Path string
	Days int
}

var _ app.ForecastSource = (*FileSource)(nil)

// NewFileSource returns a FileSource over the given JSON file.
func NewFileSource(path string, days int) *FileSource {
	return &FileSource{Path: path, Days: days}
}

// Fetch parses the mock file with the same normalization as the live client.
func (f *FileSource) Fetch(ctx context.Context) ([]app.ForecastDay, error) {
	_ = ctx // local read, no cancellation point
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read forecast mock: %w", err)
	}
	var body forecastResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("decode forecast mock: %w", err)
	}
	return normalize(body.Forecast, f.Days)
}
