package arbitrage

// Direction says which side of the traded symbol a leg spends.
type Direction string

const (
	// Forward spends the symbol's base asset and receives its quote asset.
	Forward Direction = "FORWARD"
	// Reverse spends the symbol's quote asset and receives its base asset.
	Reverse Direction = "REVERSE"
)

// BookType selects the side of the order book a leg consumes.
type BookType string

const (
	Asks BookType = "ASKS"
	Bids BookType = "BIDS"
)

// Level is one order-book price level.
type Level struct {
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

// TradeResult is the outcome of walking a book with a fixed budget.
// TotalCost is expressed in the spent asset, TotalQuantity in the received asset.
type TradeResult struct {
	WeightedAveragePrice float64
	TotalCost            float64
	TotalQuantity        float64
}

// SimulateTrade walks book (best level first) spending at most budget and
// reports the realized weighted-average price.
//
// In Forward the budget is base units: each level costs its quantity and yields
// price*quantity of quote. In Reverse the budget is quote units: each level costs
// price*quantity and yields its quantity of base. The last touched level may be
// filled partially at its own price.
//
// The weighted-average price is always quote per base, so it is
// TotalQuantity/TotalCost in Forward and TotalCost/TotalQuantity in Reverse.
// It returns false when nothing could be filled.
func SimulateTrade(book []Level, budget float64, direction Direction) (TradeResult, bool) {
	if budget <= 0 {
		return TradeResult{}, false
	}

	var totalCost, totalQuantity float64

	for _, level := range book {
		if level.Price <= 0 || level.Quantity <= 0 {
			continue
		}

		var cost, received float64
		if direction == Forward {
			cost = level.Quantity
			received = level.Quantity * level.Price
		} else {
			cost = level.Quantity * level.Price
			received = level.Quantity
		}

		if totalCost+cost > budget {
			remaining := budget - totalCost
			if direction == Forward {
				totalQuantity += remaining * level.Price
			} else {
				totalQuantity += remaining / level.Price
			}
			totalCost += remaining
			break
		}

		totalCost += cost
		totalQuantity += received

		if totalCost >= budget {
			break
		}
	}

	if totalQuantity <= 0 || totalCost <= 0 {
		return TradeResult{}, false
	}

	var wap float64
	if direction == Forward {
		wap = totalQuantity / totalCost
	} else {
		wap = totalCost / totalQuantity
	}

	return TradeResult{
		WeightedAveragePrice: wap,
		TotalCost:            totalCost,
		TotalQuantity:        totalQuantity,
	}, true
}
