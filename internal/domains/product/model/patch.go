package model

import (
	"time"

	"grocery-backend/internal/shared/utils"
)

// ApplyPatch folds an update request into a copy of the product.
// A name change recomputes the derived normalize_name and slug.
// Status moves only when the patch carries a status field; an explicit
// Inactive stamps hidden_at, an explicit Active clears it.
func ApplyPatch(p Product, patch UpdateProductRequest, now time.Time) Product {
	if patch.Name != nil {
		p.Name = *patch.Name
		p.NormalizeName = utils.NormalizeName(*patch.Name)
		p.Slug = utils.Slugify(*patch.Name)
	}

	if patch.Status != nil {
		p.Status = *patch.Status
		switch *patch.Status {
		case StatusInactive:
			hiddenAt := now
			p.HiddenAt = &hiddenAt
		case StatusActive:
			p.HiddenAt = nil
		}
	}

	p.UpdatedAt = now
	return p
}

// CarryForwardPrice decides whether an update produces a new ledger
// entry and with which legs. A leg missing from the patch carries
// forward from the latest entry; with no prior entry the provided leg
// fills both. No leg in the patch means no new entry.
func CarryForwardPrice(latest *PriceHistory, marketPrice, salePrice *int64) (market, sale int64, needed bool) {
	if marketPrice == nil && salePrice == nil {
		return 0, 0, false
	}

	if marketPrice != nil {
		market = *marketPrice
	} else if latest != nil {
		market = latest.MarketPrice
	} else {
		market = *salePrice
	}

	if salePrice != nil {
		sale = *salePrice
	} else if latest != nil {
		sale = latest.SalePrice
	} else {
		sale = *marketPrice
	}

	return market, sale, true
}

// NewFromCreate builds a product row from a create request, deriving
// the normalized name and slug and stamping hidden_at when the request
// starts the product Inactive. The caller assigns the id.
func NewFromCreate(req CreateProductRequest, now time.Time) Product {
	status := StatusActive
	if req.Status != nil {
		status = *req.Status
	}

	p := Product{
		Name:          req.Name,
		NormalizeName: utils.NormalizeName(req.Name),
		Slug:          utils.Slugify(req.Name),
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if status == StatusInactive {
		hiddenAt := now
		p.HiddenAt = &hiddenAt
	}
	return p
}
