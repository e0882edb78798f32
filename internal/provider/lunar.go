package provider

import (
	"context"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog"

	apperrors "github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/errors"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/models"
)

// lunarRow is one CSV record of the moon calendar.
type lunarRow struct {
	Date string `csv:"date"` // YYYY-MM-DD
	Kind string `csv:"kind"` // NEW_MOON or FULL_MOON
}

// LunarCSV loads new/full moon events from a local CSV file.
type LunarCSV struct {
	path   string
	logger zerolog.Logger
}

// NewLunarCSV creates a new lunar calendar loader.
func NewLunarCSV(path string, logger zerolog.Logger) *LunarCSV {
	return &LunarCSV{
		path:   path,
		logger: logger.With().Str("component", "lunar").Logger(),
	}
}

// Events loads the calendar. A missing path yields zero events: lunar data is
// an optional signal source. Rows with unknown kinds or malformed dates are
// skipped, not fatal.
func (l *LunarCSV) Events(_ context.Context) ([]models.LunarEvent, error) {
	if l.path == "" {
		return nil, nil
	}

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewDataError("lunar", "", l.path, apperrors.ErrDataNotFound)
		}
		return nil, apperrors.NewDataError("lunar", "", "opening calendar", err)
	}
	defer f.Close()

	var rows []*lunarRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, apperrors.NewDataError("lunar", "", "parsing calendar", err)
	}

	var events []models.LunarEvent
	for _, row := range rows {
		kind := models.LunarKind(row.Kind)
		if kind != models.LunarNewMoon && kind != models.LunarFullMoon {
			l.logger.Warn().Str("kind", row.Kind).Str("date", row.Date).Msg("skipping unknown lunar kind")
			continue
		}
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			l.logger.Warn().Str("date", row.Date).Msg("skipping malformed lunar date")
			continue
		}
		events = append(events, models.LunarEvent{Date: date.UTC(), Kind: kind})
	}

	l.logger.Debug().Int("events", len(events)).Msg("loaded lunar calendar")
	return events, nil
}
