package service

import (
	"crypto-gate-service/domain"
)

const (
	pointsPerHour = 12
)

// HourlyCandles groups 5-minute [timestamp, price] points into hourly rows.
// A trailing group with less than an hour of points is dropped.
func HourlyCandles(prices [][2]float64) []domain.PriceRow {
	rows := make([]domain.PriceRow, 0, len(prices)/pointsPerHour)
	for i := 0; i+pointsPerHour <= len(prices); i += pointsPerHour {
		group := prices[i : i+pointsPerHour]
		open := group[0][1]
		high, low := open, open
		for _, point := range group[1:] {
			high = max(high, point[1])
			low = min(low, point[1])
		}
		rows = append(rows, domain.PriceRow{group[0][0], open, high, low, group[len(group)-1][1]})
	}
	return rows
}
