package mt5

import (
	"errors"
	"fmt"
	"strings"
)

// Timeframe — внутренний код таймфрейма терминала (TIMEFRAME_*).
type Timeframe int

const (
	TimeframeM1  Timeframe = 1
	TimeframeM2  Timeframe = 2
	TimeframeM3  Timeframe = 3
	TimeframeM4  Timeframe = 4
	TimeframeM5  Timeframe = 5
	TimeframeM6  Timeframe = 6
	TimeframeM10 Timeframe = 10
	TimeframeM12 Timeframe = 12
	TimeframeM15 Timeframe = 15
	TimeframeM20 Timeframe = 20
	TimeframeM30 Timeframe = 30
	TimeframeH1  Timeframe = 1 | 0x4000
	TimeframeH2  Timeframe = 2 | 0x4000
	TimeframeH3  Timeframe = 3 | 0x4000
	TimeframeH4  Timeframe = 4 | 0x4000
	TimeframeH6  Timeframe = 6 | 0x4000
	TimeframeH8  Timeframe = 8 | 0x4000
	TimeframeH12 Timeframe = 12 | 0x4000
	TimeframeD1  Timeframe = 24 | 0x4000
	TimeframeW1  Timeframe = 1 | 0x8000
	TimeframeMN1 Timeframe = 1 | 0xC000
)

var ErrUnknownTimeframe = errors.New("unknown timeframe")

// defaultTimeframes — таблица имя -> код. Ключи в нижнем регистре.
var defaultTimeframes = map[string]Timeframe{
	"m1":  TimeframeM1,
	"m2":  TimeframeM2,
	"m3":  TimeframeM3,
	"m4":  TimeframeM4,
	"m5":  TimeframeM5,
	"m6":  TimeframeM6,
	"m10": TimeframeM10,
	"m12": TimeframeM12,
	"m15": TimeframeM15,
	"m20": TimeframeM20,
	"m30": TimeframeM30,
	"h1":  TimeframeH1,
	"h2":  TimeframeH2,
	"h3":  TimeframeH3,
	"h4":  TimeframeH4,
	"h6":  TimeframeH6,
	"h8":  TimeframeH8,
	"h12": TimeframeH12,
	"d1":  TimeframeD1,
	"w1":  TimeframeW1,
	"mn1": TimeframeMN1,
}

// TimeframeNames возвращает словарь имён в каноническом (нижнем) регистре.
func TimeframeNames() []string {
	names := make([]string, 0, len(defaultTimeframes))
	for name := range defaultTimeframes {
		names = append(names, name)
	}
	return names
}

// ParseTimeframe ищет таймфрейм без учёта регистра: "H1", "h1", " h1 " -> TimeframeH1.
func ParseTimeframe(name string) (Timeframe, error) {
	return lookupTimeframe(defaultTimeframes, name)
}

func lookupTimeframe(table map[string]Timeframe, name string) (Timeframe, error) {
	tf, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimeframe, name)
	}
	return tf, nil
}

func (tf Timeframe) String() string {
	for name, code := range defaultTimeframes {
		if code == tf {
			return strings.ToUpper(name)
		}
	}
	return fmt.Sprintf("Timeframe(%d)", int(tf))
}
