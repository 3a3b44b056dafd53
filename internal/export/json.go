package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/timetrax/internal/accounting"
)

type jsonExport struct {
	ExportedAt string    `json:"exported_at"`
	Count      int       `json:"count"`
	Days       []jsonDay `json:"days"`
}

type jsonDay struct {
	Date        string `json:"date"`
	WorkedSec   *int64 `json:"worked_seconds,omitempty"`
	Worked      string `json:"worked,omitempty"`
	ExpectedSec int64  `json:"expected_seconds"`
	Expected    string `json:"expected"`
	DiffSec     int64  `json:"diff_seconds"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

func ToJSON(days []accounting.DayTime, path string, exportedAt time.Time) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, days, exportedAt); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

func WriteJSON(w io.Writer, days []accounting.DayTime, exportedAt time.Time) error {
	export := jsonExport{
		ExportedAt: exportedAt.UTC().Format(time.RFC3339),
		Count:      len(days),
		Days:       make([]jsonDay, 0, len(days)),
	}

	for _, d := range days {
		day := jsonDay{
			Date:        d.Date.String(),
			ExpectedSec: seconds(d.Expected),
			Expected:    FormatDuration(d.Expected),
			DiffSec:     seconds(d.Diff()),
			Status:      status(d),
		}
		if d.Err != nil {
			day.Error = d.Err.Error()
		} else {
			secs := seconds(d.Worked)
			day.WorkedSec = &secs
			day.Worked = FormatDuration(d.Worked)
		}
		export.Days = append(export.Days, day)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}
