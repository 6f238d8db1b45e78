package ingestion

import (
	"strings"

	"go.uber.org/zap"

	"eld-compliance/internal/domain/device"
	"eld-compliance/internal/domain/dutylog"
	"eld-compliance/internal/logger"
)

// dutyStatusAliases is the single shared lookup for provider duty-status
// literals. Keeping every vendor's vocabulary in one table prevents the
// per-provider copies from drifting apart.
var dutyStatusAliases = map[device.Provider]map[string]dutylog.DutyStatus{
	device.ProviderSamsara: {
		"driving":      dutylog.StatusDriving,
		"onduty":       dutylog.StatusOnDuty,
		"on_duty":      dutylog.StatusOnDuty,
		"offduty":      dutylog.StatusOffDuty,
		"off_duty":     dutylog.StatusOffDuty,
		"sleeperberth": dutylog.StatusSleeperBerth,
		"sleeper":      dutylog.StatusSleeperBerth,
	},
	device.ProviderGeotab: {
		"d":   dutylog.StatusDriving,
		"on":  dutylog.StatusOnDuty,
		"off": dutylog.StatusOffDuty,
		"sb":  dutylog.StatusSleeperBerth,
	},
	device.ProviderMotive: {
		"driving":       dutylog.StatusDriving,
		"on_duty":       dutylog.StatusOnDuty,
		"off_duty":      dutylog.StatusOffDuty,
		"sleeper":       dutylog.StatusSleeperBerth,
		"sleeper_berth": dutylog.StatusSleeperBerth,
	},
	device.ProviderMobileApp: {
		"driving":       dutylog.StatusDriving,
		"on_duty":       dutylog.StatusOnDuty,
		"off_duty":      dutylog.StatusOffDuty,
		"sleeper":       dutylog.StatusSleeperBerth,
		"sleeper_berth": dutylog.StatusSleeperBerth,
	},
}

// mapDutyStatus translates a provider literal into the canonical enum.
// Unrecognized values fall back to off_duty with a logged warning rather
// than failing the whole ingestion.
func mapDutyStatus(provider device.Provider, raw string) dutylog.DutyStatus {
	table, ok := dutyStatusAliases[provider]
	if ok {
		if status, found := table[strings.ToLower(strings.TrimSpace(raw))]; found {
			return status
		}
	}

	logger.Warn("unrecognized duty status, defaulting to off_duty",
		zap.String("provider", string(provider)),
		zap.String("raw_status", raw),
	)
	return dutylog.StatusOffDuty
}
