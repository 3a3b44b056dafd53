// Package holiday answers whether a calendar date is a public holiday in a
// German federal state, using the rules shipped with github.com/rickar/cal.
package holiday

import (
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
)

// DefaultRegion is Baden-Württemberg.
const DefaultRegion = "BW"

// National is the region code for holidays observed in every state.
const National = "DE"

var regionHolidays = map[string][]*cal.Holiday{
	National: de.Holidays,
	"BW":     de.HolidaysBW,
	"BY":     de.HolidaysBY,
	"BE":     de.HolidaysBE,
	"BB":     de.HolidaysBB,
	"HB":     de.HolidaysHB,
	"HH":     de.HolidaysHH,
	"HE":     de.HolidaysHE,
	"MV":     de.HolidaysMV,
	"NI":     de.HolidaysNI,
	"NW":     de.HolidaysNW,
	"RP":     de.HolidaysRP,
	"SL":     de.HolidaysSL,
	"SN":     de.HolidaysSN,
	"ST":     de.HolidaysST,
	"SH":     de.HolidaysSH,
	"TH":     de.HolidaysTH,
}

// Calendar holds one business calendar per region. It is read-only after
// New and safe for concurrent use.
type Calendar struct {
	regions map[string]*cal.BusinessCalendar
}

func New() *Calendar {
	c := &Calendar{regions: make(map[string]*cal.BusinessCalendar, len(regionHolidays))}
	for code, hs := range regionHolidays {
		bc := cal.NewBusinessCalendar()
		bc.AddHoliday(hs...)
		c.regions[code] = bc
	}
	return c
}

// Known reports whether region is a supported region code.
func Known(region string) bool {
	_, ok := regionHolidays[normalize(region)]
	return ok
}

// Regions lists the supported region codes.
func Regions() []string {
	out := make([]string, 0, len(regionHolidays))
	for code := range regionHolidays {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// IsHoliday reports whether date is a public holiday in region. Unknown
// regions fall back to the national holidays.
func (c *Calendar) IsHoliday(date civil.Date, region string) bool {
	_, ok := c.Name(date, region)
	return ok
}

// Name returns the name of the holiday falling on date in region.
func (c *Calendar) Name(date civil.Date, region string) (string, bool) {
	bc, ok := c.regions[normalize(region)]
	if !ok {
		bc = c.regions[National]
	}
	actual, _, h := bc.IsHoliday(date.In(time.UTC))
	if !actual || h == nil {
		return "", false
	}
	return h.Name, true
}

func normalize(region string) string {
	return strings.ToUpper(strings.TrimSpace(region))
}
