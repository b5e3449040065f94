// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package types

type SymbolStatusReq struct {
	Symbol string `path:"symbol"`
}

type SymbolStatusResp struct {
	Symbol      string  `json:"symbol"`
	State       string  `json:"state"`
	Failures    int     `json:"failures"`
	LastSuccess string  `json:"last_success,omitempty"`
	NextRetryAt string  `json:"next_retry_at,omitempty"`
	ResumeAt    string  `json:"resume_at,omitempty"`
	Price       float64 `json:"price,omitempty"`
	Currency    string  `json:"currency,omitempty"`
}

type PortfolioReq struct {
	Currency string `form:"currency,optional"`
}

type PortfolioValueResp struct {
	Currency  string  `json:"currency"`
	Value     float64 `json:"value"`
	DayChange float64 `json:"day_change"`
	Fallback  bool    `json:"fallback_rates"`
}

type PortfolioGainResp struct {
	Currency string  `json:"currency"`
	Gain     float64 `json:"gain"`
	Fallback bool    `json:"fallback_rates"`
}

type RetryReq struct {
	Symbol string `path:"symbol"`
}

type RetryResp struct {
	Symbol string `json:"symbol"`
	State  string `json:"state"`
}

type CacheClearResp struct {
	Cleared bool `json:"cleared"`
}
