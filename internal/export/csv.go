// Package export writes the per-day ledger as CSV or JSON.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/timetrax/internal/accounting"
)

func ToCSV(days []accounting.DayTime, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, days); err != nil {
		return err
	}
	return f.Close()
}

func WriteCSV(out io.Writer, days []accounting.DayTime) error {
	w := csv.NewWriter(out)

	// Header
	if err := w.Write([]string{"Date", "Worked (s)", "Worked", "Expected (s)", "Expected", "Diff (s)", "Diff", "Status"}); err != nil {
		return err
	}

	for _, d := range days {
		worked := ""
		workedSecs := ""
		if d.Err == nil {
			worked = FormatDuration(d.Worked)
			workedSecs = fmt.Sprintf("%d", seconds(d.Worked))
		}
		row := []string{
			d.Date.String(),
			workedSecs,
			worked,
			fmt.Sprintf("%d", seconds(d.Expected)),
			FormatDuration(d.Expected),
			fmt.Sprintf("%d", seconds(d.Diff())),
			FormatDuration(d.Diff()),
			status(d),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func status(d accounting.DayTime) string {
	switch {
	case d.Err == nil:
		return "ok"
	case d.Inconsistent():
		return "inconsistent"
	default:
		return "error"
	}
}

func seconds(d time.Duration) int64 {
	return int64(d / time.Second)
}

// FormatDuration renders d as [-]HH:MM:SS, truncated to whole seconds.
func FormatDuration(d time.Duration) string {
	secs := seconds(d)
	sign := ""
	if secs < 0 {
		sign = "-"
		secs = -secs
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
