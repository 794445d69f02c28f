package ssoticadomain

import (
	"slices"
	"strings"
)

type Origin string

const (
	SocialNetworkOrigin Origin = "Redes Sociais"
	OthersOrigin        Origin = "others"
)

var SocialNetworkOrigins = []Origin{
	SocialNetworkOrigin,
	"Tráfego Pago",
	"Rede Social",
	"Redes Sociais / Trafego Pago",
	"Trafego Pago",
	"Redes Sociais / Trafego",
	"Redes Socias",
	"Rede Social - Eclel",
	"Rede Social - Bruna",
}

type Order struct {
	ID              int      `json:"id,omitempty"`
	Date            string   `json:"data,omitempty"`
	Time            string   `json:"hora,omitempty"`
	Status          string   `json:"status,omitempty"`
	Number          int      `json:"numero,omitempty"`
	GrossAmount     float64  `json:"valor_bruto,omitempty"`
	Increase        float64  `json:"acrescimo,omitempty"`
	Discount        float64  `json:"desconto,omitempty"`
	ExchangeCredit  float64  `json:"credito_troca,omitempty"`
	NetAmount       float64  `json:"valor_liquido,omitempty"`
	CustomerOrigins []Origin `json:"origensCliente,omitempty"`
}

// FromSocialNetwork considera apenas a primeira origem informada do cliente
func (o Order) FromSocialNetwork(origins []Origin) bool {
	if len(o.CustomerOrigins) == 0 {
		return false
	}
	first := Origin(strings.TrimSpace(string(o.CustomerOrigins[0])))
	return slices.Contains(origins, first)
}

// Day devolve a data da venda no formato AAAA-MM-DD
func (o Order) Day() string {
	if len(o.Date) >= 10 {
		return o.Date[:10]
	}
	return o.Date
}

// DailySales é o total de vendas vindas de redes sociais num dia
type DailySales struct {
	Orders    int
	NetAmount float64
}

// GroupSocialNetworkByDay soma quantidade e valor líquido por dia
func GroupSocialNetworkByDay(orders []Order, origins []Origin) map[string]DailySales {
	days := make(map[string]DailySales)
	for _, order := range orders {
		day := order.Day()
		summary := days[day]
		if order.FromSocialNetwork(origins) {
			summary.Orders++
			summary.NetAmount += order.NetAmount
		}
		days[day] = summary
	}
	return days
}
