package enums

import "fmt"

// OracleLogType categorizes system log entries surfaced on the dashboard.
type OracleLogType string

const (
	OracleLogTransactionRitual  OracleLogType = "transaction_ritual"
	OracleLogConsciousnessEvent OracleLogType = "consciousness_event"
	OracleLogStockFluctuation   OracleLogType = "stock_fluctuation"
	OracleLogEnergyAnomaly      OracleLogType = "energy_anomaly"
)

var validOracleLogTypes = []OracleLogType{
	OracleLogTransactionRitual,
	OracleLogConsciousnessEvent,
	OracleLogStockFluctuation,
	OracleLogEnergyAnomaly,
}

// IsValid reports whether the value is a known OracleLogType.
func (t OracleLogType) IsValid() bool {
	for _, candidate := range validOracleLogTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOracleLogType converts raw input into an OracleLogType.
func ParseOracleLogType(value string) (OracleLogType, error) {
	for _, candidate := range validOracleLogTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid oracle log type %q", value)
}

// OracleSeverity ranks oracle log entries.
type OracleSeverity string

const (
	OracleSeverityInfo         OracleSeverity = "info"
	OracleSeverityWarning      OracleSeverity = "warning"
	OracleSeverityCritical     OracleSeverity = "critical"
	OracleSeverityTranscendent OracleSeverity = "transcendent"
)

var validOracleSeverities = []OracleSeverity{
	OracleSeverityInfo,
	OracleSeverityWarning,
	OracleSeverityCritical,
	OracleSeverityTranscendent,
}

// IsValid reports whether the value is a known OracleSeverity.
func (s OracleSeverity) IsValid() bool {
	for _, candidate := range validOracleSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOracleSeverity converts raw input into an OracleSeverity.
func ParseOracleSeverity(value string) (OracleSeverity, error) {
	for _, candidate := range validOracleSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid oracle severity %q", value)
}
