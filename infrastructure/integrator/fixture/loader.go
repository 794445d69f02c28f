package fixture

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/vfg2006/traffic-autopilot/internal/domain"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	entitiesFile      = "entities.json"
	metricsDailyFile  = "metrics_daily.csv"
	metricsHourlyFile = "metrics_intraday.csv"
)

// entityRow é o formato de cada item de entities.json
type entityRow struct {
	EntityType string         `json:"entity_type"`
	EntityID   string         `json:"entity_id"`
	ParentType string         `json:"parent_type"`
	ParentID   string         `json:"parent_id"`
	AccountID  string         `json:"account_id"`
	Name       string         `json:"name"`
	Status     string         `json:"status"`
	Meta       map[string]any `json:"meta"`
}

// metricRow é uma linha de metrics_daily.csv ou metrics_intraday.csv. Bucket
// guarda a coluna date ou hour_ts sem interpretação.
type metricRow struct {
	Platform        string
	AccountID       string
	EntityType      string
	EntityID        string
	Bucket          string
	Spend           *float64
	Impressions     *int64
	Clicks          *int64
	Conversions     *float64
	ConversionValue *float64
	Extra           map[string]any
}

// loadEntities lê entities.json. Arquivo ausente é um diretório sem entidades.
func loadEntities(dir string) ([]entityRow, error) {
	data, err := os.ReadFile(filepath.Join(dir, entitiesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "erro ao ler entities.json")
	}

	var rows []entityRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, errors.Wrap(err, "entities.json precisa ser uma lista JSON")
	}
	return rows, nil
}

// loadMetrics lê um CSV de métricas; bucketColumn é "date" ou "hour_ts"
func loadMetrics(dir, name, bucketColumn string) ([]metricRow, error) {
	f, err := os.Open(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "erro ao abrir %s", name)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "erro ao ler cabeçalho de %s", name)
	}

	columns := make(map[string]int, len(header))
	for i, col := range header {
		// remove o BOM que planilhas exportadas costumam deixar
		col = strings.TrimPrefix(strings.TrimSpace(col), "\ufeff")
		columns[strings.ToLower(col)] = i
	}

	rows := make([]metricRow, 0)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s linha %d", name, line)
		}

		get := func(col string) string {
			i, ok := columns[col]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		rows = append(rows, metricRow{
			Platform:        get("platform"),
			AccountID:       get("account_id"),
			EntityType:      get("entity_type"),
			EntityID:        get("entity_id"),
			Bucket:          get(bucketColumn),
			Spend:           parseFloat(get("spend")),
			Impressions:     parseInt(get("impressions")),
			Clicks:          parseInt(get("clicks")),
			Conversions:     parseFloat(get("conversions")),
			ConversionValue: parseFloat(get("conversion_value")),
			Extra:           parseExtra(get("metrics_json")),
		})
	}

	return rows, nil
}

// parseFloat remove separador de milhar; vazio ou inválido é nulo
func parseFloat(v string) *float64 {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(v string) *int64 {
	f := parseFloat(v)
	if f == nil {
		return nil
	}
	i := int64(*f)
	return &i
}

func parseExtra(v string) map[string]any {
	if v == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(v), &out); err != nil {
		return map[string]any{"_raw": v}
	}
	if m, ok := out.(map[string]any); ok {
		return m
	}
	return map[string]any{"_raw": out}
}

var hourLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	domain.BucketLayout,
	"2006-01-02 15:04",
}

// parseHour interpreta hour_ts e trunca para o início da hora no fuso dado.
// Horários sem fuso são lidos como hora local de loc.
func parseHour(value string, loc *time.Location) (time.Time, error) {
	for _, layout := range hourLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		t = t.In(loc)
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc), nil
	}
	return time.Time{}, errors.Errorf("hour_ts inválido: %q", value)
}
