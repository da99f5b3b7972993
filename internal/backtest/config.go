package backtest

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/swing-backtest/internal/strategy"
	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/rxtech-lab/swing-backtest/pkg/marketdata"
	"gopkg.in/yaml.v3"
)

// Config is the single immutable configuration value consumed by the whole
// pipeline. All fields have documented defaults; see DefaultConfig.
type Config struct {
	// InitialCapital is the starting account value in currency units.
	InitialCapital float64 `yaml:"initial_capital" json:"initial_capital" jsonschema:"title=Initial Capital,description=Starting capital for the backtest,minimum=0" validate:"gt=0"`
	// CommissionRate is the proportional fee per fill (0.002 = 20 bps).
	CommissionRate float64 `yaml:"commission_rate" json:"commission_rate" jsonschema:"title=Commission Rate,description=Proportional fee charged per fill" validate:"gte=0,lt=1"`
	// RSIPeriod is the RSI lookback in bars.
	RSIPeriod int `yaml:"rsi_period" json:"rsi_period" jsonschema:"title=RSI Period" validate:"gt=0"`
	// MACDFastPeriod is the fast EMA span.
	MACDFastPeriod int `yaml:"macd_fast_period" json:"macd_fast_period" jsonschema:"title=MACD Fast Period" validate:"gt=0"`
	// MACDSlowPeriod is the slow EMA span.
	MACDSlowPeriod int `yaml:"macd_slow_period" json:"macd_slow_period" jsonschema:"title=MACD Slow Period" validate:"gt=0,gtfield=MACDFastPeriod"`
	// MACDSignalPeriod is the signal EMA span over the MACD line.
	MACDSignalPeriod int `yaml:"macd_signal_period" json:"macd_signal_period" jsonschema:"title=MACD Signal Period" validate:"gt=0"`
	// CCIPeriod is the CCI lookback in bars.
	CCIPeriod int `yaml:"cci_period" json:"cci_period" jsonschema:"title=CCI Period" validate:"gt=0"`
	// Signal holds the thresholds and vote rule for the signal generator.
	Signal strategy.SwingConfig `yaml:"signal" json:"signal" jsonschema:"title=Signal Thresholds"`
	// MaxEntryDelay bounds the entry confirmation delay grid search.
	MaxEntryDelay int `yaml:"max_entry_delay" json:"max_entry_delay" jsonschema:"title=Max Entry Delay,description=Upper bound of the entry delay search range in bars" validate:"gte=0"`
	// MaxExitDelay bounds the exit confirmation delay grid search.
	MaxExitDelay int `yaml:"max_exit_delay" json:"max_exit_delay" jsonschema:"title=Max Exit Delay,description=Upper bound of the exit delay search range in bars" validate:"gte=0"`
	// Objective is the metric the grid search maximizes.
	Objective Objective `yaml:"objective" json:"objective" jsonschema:"title=Objective"`
	// Resample is the bar frequency the core operates on.
	Resample marketdata.ResampleRule `yaml:"resample" json:"resample" jsonschema:"title=Resample Rule"`
	// StartTime optionally drops bars before this time.
	StartTime optional.Option[time.Time] `yaml:"start_time" json:"start_time" jsonschema:"title=Start Time"`
	// EndTime optionally drops bars after this time.
	EndTime optional.Option[time.Time] `yaml:"end_time" json:"end_time" jsonschema:"title=End Time"`
}

// DefaultConfig returns the documented defaults: RSI(14), MACD(12,26,9),
// CCI(20), majority vote, 0-5 bar delay grid, total-return objective,
// weekly-Friday bars, 10000 starting capital and 20 bps commission.
func DefaultConfig() Config {
	return Config{
		InitialCapital:   10000,
		CommissionRate:   0.002,
		RSIPeriod:        14,
		MACDFastPeriod:   12,
		MACDSlowPeriod:   26,
		MACDSignalPeriod: 9,
		CCIPeriod:        20,
		Signal:           strategy.DefaultSwingConfig(),
		MaxEntryDelay:    5,
		MaxExitDelay:     5,
		Objective:        ObjectiveReturn,
		Resample:         marketdata.RuleWeeklyFriday,
		StartTime:        optional.None[time.Time](),
		EndTime:          optional.None[time.Time](),
	}
}

// Validate checks every field, including the nested signal config.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid backtest config", err)
	}

	if err := c.Signal.Validate(); err != nil {
		return err
	}

	if err := c.Objective.Validate(); err != nil {
		return err
	}

	if err := c.Resample.Validate(); err != nil {
		return err
	}

	if c.StartTime.IsSome() && c.EndTime.IsSome() && c.EndTime.Unwrap().Before(c.StartTime.Unwrap()) {
		return errors.New(errors.ErrCodeInvalidConfiguration, "end_time must not precede start_time")
	}

	return nil
}

// UnmarshalYAML implements custom unmarshaling so that optional time bounds
// can be written as plain timestamps and omitted fields keep their current
// (default) values.
func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plainConfig struct {
		InitialCapital   float64                 `yaml:"initial_capital"`
		CommissionRate   float64                 `yaml:"commission_rate"`
		RSIPeriod        int                     `yaml:"rsi_period"`
		MACDFastPeriod   int                     `yaml:"macd_fast_period"`
		MACDSlowPeriod   int                     `yaml:"macd_slow_period"`
		MACDSignalPeriod int                     `yaml:"macd_signal_period"`
		CCIPeriod        int                     `yaml:"cci_period"`
		Signal           strategy.SwingConfig    `yaml:"signal"`
		MaxEntryDelay    int                     `yaml:"max_entry_delay"`
		MaxExitDelay     int                     `yaml:"max_exit_delay"`
		Objective        Objective               `yaml:"objective"`
		Resample         marketdata.ResampleRule `yaml:"resample"`
		StartTime        *time.Time              `yaml:"start_time"`
		EndTime          *time.Time              `yaml:"end_time"`
	}

	plain := plainConfig{
		InitialCapital:   c.InitialCapital,
		CommissionRate:   c.CommissionRate,
		RSIPeriod:        c.RSIPeriod,
		MACDFastPeriod:   c.MACDFastPeriod,
		MACDSlowPeriod:   c.MACDSlowPeriod,
		MACDSignalPeriod: c.MACDSignalPeriod,
		CCIPeriod:        c.CCIPeriod,
		Signal:           c.Signal,
		MaxEntryDelay:    c.MaxEntryDelay,
		MaxExitDelay:     c.MaxExitDelay,
		Objective:        c.Objective,
		Resample:         c.Resample,
		StartTime:        nil,
		EndTime:          nil,
	}

	if err := unmarshal(&plain); err != nil {
		return err
	}

	c.InitialCapital = plain.InitialCapital
	c.CommissionRate = plain.CommissionRate
	c.RSIPeriod = plain.RSIPeriod
	c.MACDFastPeriod = plain.MACDFastPeriod
	c.MACDSlowPeriod = plain.MACDSlowPeriod
	c.MACDSignalPeriod = plain.MACDSignalPeriod
	c.CCIPeriod = plain.CCIPeriod
	c.Signal = plain.Signal
	c.MaxEntryDelay = plain.MaxEntryDelay
	c.MaxExitDelay = plain.MaxExitDelay
	c.Objective = plain.Objective
	c.Resample = plain.Resample

	if plain.StartTime != nil {
		c.StartTime = optional.Some(*plain.StartTime)
	}

	if plain.EndTime != nil {
		c.EndTime = optional.Some(*plain.EndTime)
	}

	return nil
}

// MarshalYAML implements custom marshaling symmetric with UnmarshalYAML:
// optional time bounds are emitted as plain timestamps and omitted entirely
// when unset, so a marshaled config can always be parsed back.
func (c Config) MarshalYAML() (interface{}, error) {
	type plainConfig struct {
		InitialCapital   float64                 `yaml:"initial_capital"`
		CommissionRate   float64                 `yaml:"commission_rate"`
		RSIPeriod        int                     `yaml:"rsi_period"`
		MACDFastPeriod   int                     `yaml:"macd_fast_period"`
		MACDSlowPeriod   int                     `yaml:"macd_slow_period"`
		MACDSignalPeriod int                     `yaml:"macd_signal_period"`
		CCIPeriod        int                     `yaml:"cci_period"`
		Signal           strategy.SwingConfig    `yaml:"signal"`
		MaxEntryDelay    int                     `yaml:"max_entry_delay"`
		MaxExitDelay     int                     `yaml:"max_exit_delay"`
		Objective        Objective               `yaml:"objective"`
		Resample         marketdata.ResampleRule `yaml:"resample"`
		StartTime        *time.Time              `yaml:"start_time,omitempty"`
		EndTime          *time.Time              `yaml:"end_time,omitempty"`
	}

	plain := plainConfig{
		InitialCapital:   c.InitialCapital,
		CommissionRate:   c.CommissionRate,
		RSIPeriod:        c.RSIPeriod,
		MACDFastPeriod:   c.MACDFastPeriod,
		MACDSlowPeriod:   c.MACDSlowPeriod,
		MACDSignalPeriod: c.MACDSignalPeriod,
		CCIPeriod:        c.CCIPeriod,
		Signal:           c.Signal,
		MaxEntryDelay:    c.MaxEntryDelay,
		MaxExitDelay:     c.MaxExitDelay,
		Objective:        c.Objective,
		Resample:         c.Resample,
		StartTime:        nil,
		EndTime:          nil,
	}

	if c.StartTime.IsSome() {
		start := c.StartTime.Unwrap()
		plain.StartTime = &start
	}

	if c.EndTime.IsSome() {
		end := c.EndTime.Unwrap()
		plain.EndTime = &end
	}

	return plain, nil
}

// ParseConfig unmarshals YAML over the defaults and validates the result.
func ParseConfig(data []byte) (Config, error) {
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config YAML", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// GenerateSchema generates a JSON schema for the Config.
func (c *Config) GenerateSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t.String() == "optional.Option[time.Time]" {
				return &jsonschema.Schema{
					Type:   "string",
					Format: "date-time",
				}
			}

			if strings.Contains(t.String(), "backtest.Objective") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{string(ObjectiveReturn), string(ObjectiveSharpe), string(ObjectiveWinRate)},
				}
			}

			if strings.Contains(t.String(), "marketdata.ResampleRule") {
				return &jsonschema.Schema{
					Type: "string",
					Enum: []any{string(marketdata.RuleDaily), string(marketdata.RuleWeeklyFriday), string(marketdata.RuleMonthly)},
				}
			}

			return nil
		},
	}

	schema := reflector.Reflect(c)

	schema.Title = "swing-backtest-config"
	schema.Description = "Configuration schema for the swing backtest pipeline"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema, nil
}
