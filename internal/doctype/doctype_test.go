// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package doctype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Type
	}{
		{"three bank keywords", "Checking Account\nDeposits\nWithdrawals", BankStatement},
		{"two bank keywords", "Checking Account\nDeposits", General},
		{"w2", "Form W-2 Wage and Tax Statement\nSocial Security Wages", W2},
		{"tax return", "Form 1040 U.S. Individual Income Tax Return", TaxReturn},
		{"pay stub", "Gross Pay 1,000.00 Net Pay 800.00", PayStub},
		{"empty", "", General},
	}

	c := NewClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.text))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// meets both the bank statement and pay stub thresholds
	text := "Checking Account Deposits Withdrawals Gross Pay Net Pay"
	assert.Equal(t, BankStatement, NewClassifier().Classify(text))
}

func TestConfidence(t *testing.T) {
	c := NewClassifier()
	scores := c.Confidence("Checking Account Deposits")
	assert.InDelta(t, 2.0/3.0, scores[BankStatement], 1e-9)
	assert.Equal(t, 0.0, scores[PayStub])

	assert.Equal(t, 1.0, c.ConfidenceFor("Gross Pay Net Pay Payroll YTD", PayStub))
	assert.Equal(t, 1.0, c.ConfidenceFor("nothing relevant", General))
	assert.Equal(t, 0.0, c.ConfidenceFor("Gross Pay Net Pay", General))
}

func TestAddRule(t *testing.T) {
	c := NewClassifier()
	require.NoError(t, c.AddRule("brokerage_statement", []string{"Brokerage", "Holdings"}, 2))
	assert.Equal(t, Type("brokerage_statement"), c.Classify("Your brokerage holdings"))

	require.NoError(t, c.AddRule(PayStub, []string{"earnings statement"}, 1))
	assert.Equal(t, PayStub, c.Classify("Earnings Statement"))
	assert.Len(t, c.Rules(), 5)

	assert.Error(t, c.AddRule(General, []string{"x"}, 1))
	assert.Error(t, c.AddRule("x", nil, 1))
}

func TestParseType(t *testing.T) {
	got, err := ParseType(" W2 ")
	require.NoError(t, err)
	assert.Equal(t, W2, got)
	_, err = ParseType("invoice")
	assert.Error(t, err)
}
