package model

type FundRequest struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

type FundResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}

type GetBalanceRequest struct {
	Address string `form:"address" json:"address"`
}

type GetBalanceResponse struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
}
