package utils

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsTestSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

func (suite *UtilsTestSuite) TestRoundToDecimalPrecision() {
	suite.Equal(1.2345, RoundToDecimalPrecision(1.23456789, 4))
	suite.Equal(0.0, RoundToDecimalPrecision(0.00000000999, 8))
	suite.Equal(3.0, RoundToDecimalPrecision(3.99, 0))
}

func (suite *UtilsTestSuite) TestWholeSharesForFraction() {
	tests := []struct {
		name     string
		cash     float64
		price    float64
		fraction float64
		expected int64
	}{
		{name: "ten percent of cash", cash: 10000, price: 125, fraction: 0.10, expected: 8},
		{name: "exact multiple", cash: 10000, price: 100, fraction: 0.10, expected: 10},
		{name: "budget below one share", cash: 1000, price: 150, fraction: 0.10, expected: 0},
		{name: "zero price", cash: 1000, price: 0, fraction: 0.10, expected: 0},
		{name: "no cash", cash: 0, price: 10, fraction: 0.10, expected: 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, WholeSharesForFraction(tc.cash, tc.price, tc.fraction))
		})
	}
}

func (suite *UtilsTestSuite) TestRound2() {
	suite.Equal(12.35, Round2(12.345))
	suite.Equal(-3.14, Round2(-3.14159))
	suite.Equal(100.0, Round2(100))
}
