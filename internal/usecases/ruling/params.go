package ruling

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Parâmetros de cada tipo de regra, decodificados do JSON livre gravado na regra

type killSwitchParams struct {
	SpendThreshold float64 `mapstructure:"spend_threshold"`
	WindowDays     int     `mapstructure:"window_days"`
	MinClicks      int64   `mapstructure:"min_clicks"`
	// AutoExecute marca a pausa como de baixo risco e sem aprovação, o que a
	// torna elegível para o modo auto_low_risk
	AutoExecute bool `mapstructure:"auto_execute"`
}

type roasFloorParams struct {
	Floor       float64 `mapstructure:"floor"`
	Days        int     `mapstructure:"days"`
	DecreasePct float64 `mapstructure:"decrease_pct"`
}

type creativeFatigueParams struct {
	MinDays    int `mapstructure:"min_days"`
	WindowDays int `mapstructure:"window_days"`
}

func decodeParams(params map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(params)
}

func parseKillSwitch(params map[string]any) (killSwitchParams, error) {
	p := killSwitchParams{WindowDays: 3}
	if err := decodeParams(params, &p); err != nil {
		return p, err
	}
	if p.SpendThreshold <= 0 {
		return p, fmt.Errorf("spend_threshold deve ser positivo, recebido %v", p.SpendThreshold)
	}
	if p.WindowDays < 1 {
		return p, fmt.Errorf("window_days deve ser >= 1, recebido %d", p.WindowDays)
	}
	if p.MinClicks < 0 {
		p.MinClicks = 0
	}
	return p, nil
}

func parseROASFloor(params map[string]any) (roasFloorParams, error) {
	p := roasFloorParams{Days: 3, DecreasePct: 20}
	if err := decodeParams(params, &p); err != nil {
		return p, err
	}
	if p.Floor <= 0 {
		return p, fmt.Errorf("floor deve ser positivo, recebido %v", p.Floor)
	}
	if p.Days < 1 {
		return p, fmt.Errorf("days deve ser >= 1, recebido %d", p.Days)
	}
	if p.DecreasePct <= 0 || p.DecreasePct >= 100 {
		return p, fmt.Errorf("decrease_pct deve estar entre 0 e 100, recebido %v", p.DecreasePct)
	}
	return p, nil
}

func parseCreativeFatigue(params map[string]any) (creativeFatigueParams, error) {
	p := creativeFatigueParams{MinDays: 3, WindowDays: 7}
	if err := decodeParams(params, &p); err != nil {
		return p, err
	}
	if p.MinDays < 2 {
		return p, fmt.Errorf("min_days deve ser >= 2, recebido %d", p.MinDays)
	}
	if p.WindowDays < p.MinDays {
		p.WindowDays = p.MinDays
	}
	return p, nil
}
