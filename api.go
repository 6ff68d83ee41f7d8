package main

import (
	"errors"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/networth_backend/config"
	"bitbucket.org/mmdatafocus/networth_backend/models"
	"bitbucket.org/mmdatafocus/networth_backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	monthlySnapshotsCacheKey = "snapshots:monthly"
	weeklySnapshotsCacheKey  = "snapshots:weekly"
	snapshotsCacheTTL        = time.Hour
)

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", healthHandler())

	api.GET("/net/", netHandler())
	api.GET("/net/export/", netExportHandler())
	api.GET("/monthly/", monthlyHandler())
	api.GET("/weekly/", weeklyHandler())
	api.GET("/issue/", issueHandler())
	api.GET("/summary/", summaryHandler())
	api.GET("/summary/:date", getSummaryHandler())

	api.GET("/account/", listAccountsHandler())
	api.POST("/account/", createAccountHandler())
	api.GET("/account/:id", getAccountHandler())
	api.PUT("/account/:id", updateAccountHandler())
	api.DELETE("/account/:id", deleteAccountHandler())

	api.GET("/account/:id/config/", listAccountConfigsHandler())
	api.POST("/account/:id/config/", createAccountConfigHandler())
	api.PUT("/account/:id/config/:configId", updateAccountConfigHandler())
	api.DELETE("/account/:id/config/:configId", deleteAccountConfigHandler())

	api.GET("/account/:id/transaction/", listAccountTransactionsHandler())
	api.POST("/account/:id/transaction/", createTransactionHandler())
	api.PUT("/account/:id/transaction/:transactionId", updateTransactionHandler())
	api.DELETE("/account/:id/transaction/:transactionId", deleteTransactionHandler())

	api.GET("/transaction/", listTransactionsHandler())
	api.GET("/transaction/:id", getTransactionHandler())

	api.GET("/setting/", listSettingsHandler())
	api.POST("/setting/", createSettingHandler())
	api.PUT("/setting/:id", updateSettingHandler())
	api.DELETE("/setting/:id", deleteSettingHandler())
}

// respondError maps model errors onto HTTP statuses. Invariant violations
// are bugs and surface as 500; everything else is the caller's fault.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, utils.ErrorInvariant):
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func respondBindingError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
}

// invalidateSnapshotCache drops the cached snapshot series after any write
// that can change a calculation.
func invalidateSnapshotCache() {
	logger := config.GetLogger()
	if err := config.RemoveRedisKey(monthlySnapshotsCacheKey, weeklySnapshotsCacheKey); err != nil {
		config.LogError(logger, "api.go", "invalidateSnapshotCache", "RemoveRedisKey", nil, err)
		return
	}
	config.LogInfo(logger, "api.go", "invalidateSnapshotCache", "snapshot cache invalidated")
}

func healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// netHandler reports the current position: one snapshot dated tomorrow, so
// that every transaction recorded today is inside the fold.
func netHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "netHandler")
		defer span.End()

		calculator, err := models.LoadCalculator(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		tomorrow := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
		snapshot, err := calculator.Calculate(tomorrow)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

// snapshotSeries computes snapshots for the given dates, going through the
// redis cache when one is configured.
func snapshotSeries(c *gin.Context, cacheKey string, dates []time.Time) ([]*models.Snapshot, error) {
	var snapshots []*models.Snapshot
	found, err := config.GetRedisObject(cacheKey, &snapshots)
	if err != nil {
		config.LogError(config.GetLogger(), "api.go", "snapshotSeries", "GetRedisObject "+cacheKey, nil, err)
	}
	if found {
		return snapshots, nil
	}

	calculator, err := models.LoadCalculator(c.Request.Context())
	if err != nil {
		return nil, err
	}
	snapshots, err = calculator.CalculateAll(dates)
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisObject(cacheKey, snapshots, snapshotsCacheTTL); err != nil {
		config.LogError(config.GetLogger(), "api.go", "snapshotSeries", "SetRedisObject "+cacheKey, nil, err)
	}
	return snapshots, nil
}

// monthlyHandler returns month-start snapshots for the past year plus the
// upcoming month start, oldest first.
func monthlyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "monthlyHandler")
		defer span.End()

		now := time.Now().UTC()
		from := utils.MonthStart(now).AddDate(0, -11, 0)
		to := utils.MonthStart(now).AddDate(0, 1, 0)
		snapshots, err := snapshotSeries(c, monthlySnapshotsCacheKey, utils.MonthStarts(from, to))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshots)
	}
}

// weeklyHandler returns week-start snapshots for the past 24 weeks plus the
// upcoming week start, oldest first.
func weeklyHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		_, span := tracer.Start(c.Request.Context(), "weeklyHandler")
		defer span.End()

		now := time.Now().UTC()
		from := utils.WeekStart(now).AddDate(0, 0, -23*7)
		to := utils.WeekStart(now).AddDate(0, 0, 7)
		snapshots, err := snapshotSeries(c, weeklySnapshotsCacheKey, utils.WeekStarts(from, to))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshots)
	}
}

// summaryHandler serves the backfilled snapshot series from daily_summaries,
// so dashboards can read history without replaying the ledger. Optional
// from/to query params bound the date range.
func summaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		from := c.Query("from")
		to := c.Query("to")
		for _, bound := range []string{from, to} {
			if bound == "" {
				continue
			}
			if _, err := utils.ParseDate(bound); err != nil {
				respondError(c, err)
				return
			}
		}
		snapshots, err := models.GetDailySnapshots(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshots)
	}
}

func getSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Param("date")
		if _, err := utils.ParseDate(date); err != nil {
			respondError(c, err)
			return
		}
		summary, err := models.GetDailySummary(c.Request.Context(), date)
		if err != nil {
			respondError(c, err)
			return
		}
		snapshot, err := summary.Snapshot()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

func issueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		issues, err := models.ListIssues(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		if issues == nil {
			issues = []models.Issue{}
		}
		c.JSON(http.StatusOK, issues)
	}
}

func listAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var name *string
		if v := c.Query("name"); v != "" {
			name = &v
		}
		accounts, err := models.GetAccounts(c.Request.Context(), name)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

func createAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAccount
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		account, err := models.CreateAccount(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusCreated, account)
	}
}

func getAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := models.GetAccount(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func updateAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.UpdateAccountInput
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		account, err := models.UpdateAccount(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, account)
	}
}

func deleteAccountHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, err := models.DeleteAccount(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, account)
	}
}

func listAccountConfigsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := models.GetAccountConfigs(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, configs)
	}
}

func createAccountConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAccountConfig
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		accountConfig, err := models.CreateAccountConfig(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusCreated, accountConfig)
	}
}

func updateAccountConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewAccountConfig
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		accountConfig, err := models.UpdateAccountConfig(c.Request.Context(), c.Param("id"), c.Param("configId"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, accountConfig)
	}
}

func deleteAccountConfigHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountConfig, err := models.DeleteAccountConfig(c.Request.Context(), c.Param("id"), c.Param("configId"))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, accountConfig)
	}
}

func listTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var accountId *string
		if v := c.Query("accountId"); v != "" {
			accountId = &v
		}
		transactions, err := models.GetTransactions(c.Request.Context(), accountId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func listAccountTransactionsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountId := c.Param("id")
		transactions, err := models.GetTransactions(c.Request.Context(), &accountId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transactions)
	}
}

func createTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		input.AccountId = c.Param("id")
		transaction, err := models.CreateTransaction(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusCreated, transaction)
	}
}

func getTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		transaction, err := models.GetTransaction(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, transaction)
	}
}

func updateTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTransaction
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		input.AccountId = c.Param("id")
		transaction, err := models.UpdateTransaction(c.Request.Context(), c.Param("transactionId"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, transaction)
	}
}

func deleteTransactionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		transaction, err := models.DeleteTransaction(c.Request.Context(), c.Param("transactionId"))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, transaction)
	}
}

func listSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := models.GetSettings(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, settings)
	}
}

func createSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSetting
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		setting, err := models.CreateSetting(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusCreated, setting)
	}
}

func updateSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewSetting
		if err := c.ShouldBindJSON(&input); err != nil {
			respondBindingError(c, err)
			return
		}
		setting, err := models.UpdateSetting(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, setting)
	}
}

func deleteSettingHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		setting, err := models.DeleteSetting(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		invalidateSnapshotCache()
		c.JSON(http.StatusOK, setting)
	}
}
