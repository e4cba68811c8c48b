// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"context"
	"math"

	"github.com/ParagrafAI/ParagrafLocal/services/assistant/datatypes"
)

// =============================================================================
// court_fee Tool
// =============================================================================

// Court fee schedule for pecuniary claims under the Polish court costs act
// (u.k.s.c. art. 13): fixed brackets up to 20 000 zł, then 5% of the claim,
// floored at 30 zł and capped at 200 000 zł.
const (
	courtFeeMinimum = 30
	courtFeeCap     = 200_000
)

var courtFeeBrackets = []struct {
	upTo int64
	fee  int64
}{
	{500, 30},
	{1_500, 100},
	{4_000, 200},
	{7_500, 400},
	{10_000, 500},
	{15_000, 750},
	{20_000, 1_000},
}

// CourtFeeOutput is the structured fee calculation.
type CourtFeeOutput struct {
	ClaimAmount int64  `json:"claim_amount"`
	Fee         int64  `json:"fee"`
	Currency    string `json:"currency"`
	Basis       string `json:"basis"`
}

// CourtFeeTool computes the filing fee for a pecuniary claim. Pure
// computation, no store access, so it is always routable to the speed
// model.
type CourtFeeTool struct{}

var _ Tool = (*CourtFeeTool)(nil)

func (t *CourtFeeTool) Name() string { return "court_fee" }

func (t *CourtFeeTool) Definition() Definition {
	return Definition{
		Name:        t.Name(),
		Description: "Calculate the Polish court filing fee for a pecuniary claim of a given amount in PLN.",
		Parameters: map[string]ParamDef{
			"claim_amount": {Type: ParamTypeNumber, Description: "The claim amount in PLN.", Required: true},
		},
	}
}

func (t *CourtFeeTool) Execute(_ context.Context, input map[string]any,
	_ *datatypes.Session) (any, error) {

	amount, err := requiredNumber(input, "claim_amount", 0.01, 1e12)
	if err != nil {
		return nil, asInputError(err)
	}

	claim := int64(math.Ceil(amount))
	out := CourtFeeOutput{ClaimAmount: claim, Currency: "PLN"}

	for _, bracket := range courtFeeBrackets {
		if claim <= bracket.upTo {
			out.Fee = bracket.fee
			out.Basis = "opłata stała"
			return out, nil
		}
	}

	// 5% of the claim, rounded up to a full złoty.
	fee := (claim*5 + 99) / 100
	if fee < courtFeeMinimum {
		fee = courtFeeMinimum
	}
	if fee > courtFeeCap {
		fee = courtFeeCap
	}
	out.Fee = fee
	out.Basis = "opłata stosunkowa 5%"
	return out, nil
}
