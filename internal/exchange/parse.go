package exchange

import (
	"encoding/json"
	"fmt"
)

// The exchange wraps most OAuth-API payloads as {"code":"000000","data":...};
// the public API endpoints return flat objects.

func parseTokens(body []byte) (access, refresh string) {
	var payload struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ""
	}
	return payload.AccessToken, payload.RefreshToken
}

func parseBalances(body []byte, balances map[string]string) error {
	var payload struct {
		Data []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal balances: %w", err)
	}
	for _, entry := range payload.Data {
		if entry.Asset == "" {
			continue
		}
		balances[entry.Asset] = entry.Free
	}
	return nil
}

type quote struct {
	ID    string
	Price string
	Fee   string
	Total string
}

func parseQuote(body []byte, q *quote) error {
	var payload struct {
		Data struct {
			QuoteID     string `json:"quoteId"`
			QuotePrice  string `json:"quotePrice"`
			TotalFee    string `json:"totalFee"`
			TotalAmount string `json:"totalAmount"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal quote: %w", err)
	}
	q.ID = payload.Data.QuoteID
	q.Price = payload.Data.QuotePrice
	q.Fee = payload.Data.TotalFee
	q.Total = payload.Data.TotalAmount
	return nil
}

type deposit struct {
	Address string
	Tag     string
	URL     string
}

func parseDepositInfo(body []byte, d *deposit) error {
	var payload struct {
		Data struct {
			Address string `json:"address"`
			Tag     string `json:"tag"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal deposit info: %w", err)
	}
	d.Address = payload.Data.Address
	d.Tag = payload.Data.Tag
	d.URL = payload.Data.URL
	return nil
}

func parseConfirmStatus(body []byte) (ok bool, message string) {
	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false, ""
	}
	return payload.Success, payload.Message
}

func parseConvertAssets(body []byte, assets map[string][]string) error {
	var payload struct {
		Data []struct {
			AssetCode   string `json:"assetCode"`
			SubSelector []struct {
				AssetCode string `json:"assetCode"`
			} `json:"subSelector"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("unmarshal convert assets: %w", err)
	}
	for _, entry := range payload.Data {
		if entry.AssetCode == "" {
			continue
		}
		var subs []string
		for _, sub := range entry.SubSelector {
			if sub.AssetCode != "" {
				subs = append(subs, sub.AssetCode)
			}
		}
		assets[entry.AssetCode] = subs
	}
	return nil
}

func parseTickerPrice(body []byte) (string, error) {
	var payload struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("unmarshal ticker price: %w", err)
	}
	if payload.Price == "" {
		return "", fmt.Errorf("ticker price missing from payload")
	}
	return payload.Price, nil
}

func parseTickerVolume(body []byte) (string, error) {
	var payload struct {
		Volume string `json:"volume"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("unmarshal ticker volume: %w", err)
	}
	if payload.Volume == "" {
		return "", fmt.Errorf("ticker volume missing from payload")
	}
	return payload.Volume, nil
}

func parseRevokeStatus(body []byte) bool {
	var payload struct {
		Status bool `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Status
}
