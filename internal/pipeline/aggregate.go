package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/jengzang/climate-map-go/internal/models"
	"github.com/jengzang/climate-map-go/internal/stats"
)

// StartYear is the cutoff for the multi-year aggregates: only observations
// from this year on enter the daily and monthly statistics.
const StartYear = 1970

// ElementStats is the per-calendar-slot aggregate for one element,
// combined across years: the mean of the annual P10/P90, the overall
// min/max, and the mean of the annual sums.
type ElementStats struct {
	P10, P90, Min, Max, Sum float64
}

// DailyRow is one calendar day of the multi-year daily series.
type DailyRow struct {
	Day        int // sequential index after calendar sort, 1-based
	Month      int
	DayOfMonth int
	TMin       *ElementStats
	TMax       *ElementStats
	Prcp       *ElementStats
}

// MonthlyRow is one calendar month of the multi-year monthly series.
type MonthlyRow struct {
	Month int
	TMin  *ElementStats
	TMax  *ElementStats
	Prcp  *ElementStats
}

// HistoryRow is one real calendar month with per-element sample counts.
type HistoryRow struct {
	Date time.Time // first day of the month

	TMinP10, TMaxP90 float64
	TMinMin, TMaxMax float64
	PrcpSum          float64

	TMinCount, TMaxCount, PrcpCount int
}

// annualValues groups valid observations by calendar key and year.
// The calendar key is month*100+day for daily aggregation and the month
// number for monthly aggregation.
func annualValues(obs []models.Observation, sinceYear int, daily bool) map[int]map[int][]float64 {
	groups := make(map[int]map[int][]float64)
	for _, o := range obs {
		if !o.Valid || o.Date.Year() < sinceYear {
			continue
		}
		key := int(o.Date.Month())
		if daily {
			key = key*100 + o.Date.Day()
		}
		byYear := groups[key]
		if byYear == nil {
			byYear = make(map[int][]float64)
			groups[key] = byYear
		}
		year := o.Date.Year()
		byYear[year] = append(byYear[year], o.Value)
	}
	return groups
}

// combineYears runs the second aggregation stage: per-year
// P10/P90/min/max/sum first, then the mean of the annual percentiles and
// sums (and the overall extremes) across years.
func combineYears(byYear map[int][]float64) *ElementStats {
	if len(byYear) == 0 {
		return nil
	}

	var p10s, p90s, mins, maxes, sums []float64
	for _, values := range byYear {
		p10s = append(p10s, stats.Quantile(values, 0.1))
		p90s = append(p90s, stats.Quantile(values, 0.9))
		mins = append(mins, stats.Min(values))
		maxes = append(maxes, stats.Max(values))
		sums = append(sums, stats.Sum(values))
	}
	return &ElementStats{
		P10: stats.Mean(p10s),
		P90: stats.Mean(p90s),
		Min: stats.Min(mins),
		Max: stats.Max(maxes),
		Sum: stats.Mean(sums),
	}
}

func aggregateCalendar(obs []models.Observation, daily bool) map[int]*ElementStats {
	result := make(map[int]*ElementStats)
	for key, byYear := range annualValues(obs, StartYear, daily) {
		result[key] = combineYears(byYear)
	}
	return result
}

// AggregateDaily builds the multi-year daily series from the three element
// series. The calendar is the union of days any element covers; days are
// sorted by month/day and indexed sequentially.
func AggregateDaily(tmin, tmax, prcp []models.Observation) []DailyRow {
	tminStats := aggregateCalendar(tmin, true)
	tmaxStats := aggregateCalendar(tmax, true)
	prcpStats := aggregateCalendar(prcp, true)

	keys := unionKeys(tminStats, tmaxStats, prcpStats)

	rows := make([]DailyRow, 0, len(keys))
	for i, key := range keys {
		rows = append(rows, DailyRow{
			Day:        i + 1,
			Month:      key / 100,
			DayOfMonth: key % 100,
			TMin:       tminStats[key],
			TMax:       tmaxStats[key],
			Prcp:       prcpStats[key],
		})
	}
	return rows
}

// AggregateMonthly builds the multi-year monthly series.
func AggregateMonthly(tmin, tmax, prcp []models.Observation) []MonthlyRow {
	tminStats := aggregateCalendar(tmin, false)
	tmaxStats := aggregateCalendar(tmax, false)
	prcpStats := aggregateCalendar(prcp, false)

	keys := unionKeys(tminStats, tmaxStats, prcpStats)

	rows := make([]MonthlyRow, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, MonthlyRow{
			Month: key,
			TMin:  tminStats[key],
			TMax:  tmaxStats[key],
			Prcp:  prcpStats[key],
		})
	}
	return rows
}

// AggregateHistory builds the real-year per-month series, one row per
// calendar month any element covers, in chronological order.
func AggregateHistory(tmin, tmax, prcp []models.Observation) []HistoryRow {
	tminByMonth := monthValues(tmin)
	tmaxByMonth := monthValues(tmax)
	prcpByMonth := monthValues(prcp)

	months := make(map[int]struct{})
	for m := range tminByMonth {
		months[m] = struct{}{}
	}
	for m := range tmaxByMonth {
		months[m] = struct{}{}
	}
	for m := range prcpByMonth {
		months[m] = struct{}{}
	}
	keys := make([]int, 0, len(months))
	for m := range months {
		keys = append(keys, m)
	}
	sort.Ints(keys)

	rows := make([]HistoryRow, 0, len(keys))
	for _, key := range keys {
		tminVals := tminByMonth[key]
		tmaxVals := tmaxByMonth[key]
		prcpVals := prcpByMonth[key]

		row := HistoryRow{
			Date:      time.Date(key/100, time.Month(key%100), 1, 0, 0, 0, 0, time.UTC),
			TMinP10:   math.NaN(),
			TMaxP90:   math.NaN(),
			TMinMin:   math.NaN(),
			TMaxMax:   math.NaN(),
			PrcpSum:   math.NaN(),
			TMinCount: len(tminVals),
			TMaxCount: len(tmaxVals),
			PrcpCount: len(prcpVals),
		}
		if len(tminVals) > 0 {
			row.TMinP10 = stats.Quantile(tminVals, 0.1)
			row.TMinMin = stats.Min(tminVals)
		}
		if len(tmaxVals) > 0 {
			row.TMaxP90 = stats.Quantile(tmaxVals, 0.9)
			row.TMaxMax = stats.Max(tmaxVals)
		}
		if len(prcpVals) > 0 {
			row.PrcpSum = stats.Sum(prcpVals)
		}
		rows = append(rows, row)
	}
	return rows
}

// monthValues groups valid observation values by real year*100+month.
func monthValues(obs []models.Observation) map[int][]float64 {
	groups := make(map[int][]float64)
	for _, o := range obs {
		if !o.Valid {
			continue
		}
		key := o.Date.Year()*100 + int(o.Date.Month())
		groups[key] = append(groups[key], o.Value)
	}
	return groups
}

func unionKeys(maps ...map[int]*ElementStats) []int {
	seen := make(map[int]struct{})
	for _, m := range maps {
		for k := range m {
			seen[k] = struct{}{}
		}
	}
	keys := make([]int, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
