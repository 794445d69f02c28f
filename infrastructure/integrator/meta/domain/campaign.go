package metadomain

type Campaign struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	Objective       string `json:"objective"`
	DailyBudget     string `json:"daily_budget"`
}

type AdSet struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	CampaignID      string `json:"campaign_id"`
	DailyBudget     string `json:"daily_budget"`
}

// Node é o estado atual de uma campanha ou conjunto, lido antes e depois de uma ação
type Node struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	DailyBudget string `json:"daily_budget"`
}

type Cursors struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

type Paging struct {
	Cursors Cursors `json:"cursors"`
	Next    string  `json:"next"`
}

// Status devolve o effective_status quando presente
func (c Campaign) CurrentStatus() string {
	if c.EffectiveStatus != "" {
		return c.EffectiveStatus
	}
	return c.Status
}

func (a AdSet) CurrentStatus() string {
	if a.EffectiveStatus != "" {
		return a.EffectiveStatus
	}
	return a.Status
}
