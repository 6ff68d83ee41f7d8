package main

import (
	"fmt"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/models"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// netExportHandler renders the monthly snapshot series as an xlsx download,
// one row per snapshot with the net and the per-category balances.
func netExportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "netExportHandler")
		defer span.End()

		calculator, err := models.LoadCalculator(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		now := time.Now().UTC()
		from := utils.MonthStart(now).AddDate(0, -11, 0)
		to := utils.MonthStart(now).AddDate(0, 1, 0)
		snapshots, err := calculator.CalculateAll(utils.MonthStarts(from, to))
		if err != nil {
			respondError(c, err)
			return
		}

		f := excelize.NewFile()
		sheet := "Sheet1"
		if _, err := f.NewSheet(sheet); err != nil {
			respondError(c, err)
			return
		}

		// Add headers
		f.SetCellValue(sheet, "A1", "Date")
		f.SetCellValue(sheet, "B1", "Net")
		col := 'C'
		for _, totalType := range models.AllTotalTypes {
			if totalType == models.TotalTypeIgnored {
				continue
			}
			f.SetCellValue(sheet, fmt.Sprintf("%c1", col), string(totalType))
			col++
		}

		// Add data
		for i, snapshot := range snapshots {
			row := i + 2
			f.SetCellValue(sheet, "A"+fmt.Sprint(row), snapshot.Date)
			f.SetCellValue(sheet, "B"+fmt.Sprint(row), snapshot.Net.RoundFloor(2).StringFixed(2))
			col = 'C'
			for _, balance := range snapshot.TotalBalances {
				f.SetCellValue(sheet, fmt.Sprintf("%c%d", col, row), balance.Balance.RoundFloor(2).StringFixed(2))
				col++
			}
		}

		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename=networth.xlsx")
		if err := f.Write(c.Writer); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
		}
	}
}
