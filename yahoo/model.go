package yahoo

import (
	"encoding/json"
	"errors"
)

// OptionQuote is one contract as served by the options endpoint
type OptionQuote struct {
	ContractSymbol    string  `json:"contractSymbol"`
	Strike            float64 `json:"strike"`
	LastPrice         float64 `json:"lastPrice"`
	Bid               float64 `json:"bid"`
	Ask               float64 `json:"ask"`
	Volume            int64   `json:"volume"`
	OpenInterest      int64   `json:"openInterest"`
	ImpliedVolatility float64 `json:"impliedVolatility"`
}

// Chain is the decoded option chain for one expiration
type Chain struct {
	Symbol          string        `json:"symbol"`
	ExpirationDates []int64       `json:"expirationDates"`
	Strikes         []float64     `json:"strikes"`
	Expiration      int64         `json:"expiration"`
	Calls           []OptionQuote `json:"calls"`
	Puts            []OptionQuote `json:"puts"`
}

type apiResponse struct {
	OptionChain *apiEnvelope `json:"optionChain"`
	// Older payloads nest the same envelope under "finance"
	Finance *apiEnvelope `json:"finance"`
}

type apiEnvelope struct {
	Result []apiResult `json:"result"`
	Error  *apiError   `json:"error"`
}

type apiResult struct {
	UnderlyingSymbol string      `json:"underlyingSymbol"`
	ExpirationDates  []int64     `json:"expirationDates"`
	Strikes          []float64   `json:"strikes"`
	Options          []apiOption `json:"options"`
}

type apiOption struct {
	ExpirationDate int64         `json:"expirationDate"`
	Calls          []OptionQuote `json:"calls"`
	Puts           []OptionQuote `json:"puts"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

var errNoChain = errors.New("response holds no option chain")

// decodeChain parses an options endpoint body into a Chain
func decodeChain(symbol string, body []byte) (Chain, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Chain{}, err
	}

	env := resp.OptionChain
	if env == nil {
		env = resp.Finance
	}
	if env == nil {
		return Chain{}, errNoChain
	}
	if env.Error != nil {
		return Chain{}, errors.New(env.Error.Code + ": " + env.Error.Description)
	}
	if len(env.Result) == 0 {
		return Chain{}, errNoChain
	}

	r := env.Result[0]
	chain := Chain{
		Symbol:          symbol,
		ExpirationDates: r.ExpirationDates,
		Strikes:         r.Strikes,
	}
	if r.UnderlyingSymbol != "" {
		chain.Symbol = r.UnderlyingSymbol
	}
	if len(r.Options) > 0 {
		chain.Expiration = r.Options[0].ExpirationDate
		chain.Calls = r.Options[0].Calls
		chain.Puts = r.Options[0].Puts
	}
	return chain, nil
}
