// internal/services/commission_service_test.go
package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type WaterfallTestSuite struct {
	suite.Suite
}

func (suite *WaterfallTestSuite) chain(rates ...string) []ratedLevel {
	chain := make([]ratedLevel, len(rates))
	for i, r := range rates {
		chain[i] = ratedLevel{
			AgentID: uuid.New(),
			Rate:    decimal.RequireFromString(r),
		}
	}
	return chain
}

func (suite *WaterfallTestSuite) TestSingleNodeEarnsOwnRate() {
	chain := suite.chain("1.0")
	awards := waterfallLevels(chain, decimal.NewFromInt(100000))

	suite.Require().Len(awards, 1)
	suite.Equal(1, awards[0].Level)
	suite.True(awards[0].EffectiveRate.Equal(decimal.RequireFromString("1.0")))
	suite.True(awards[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func (suite *WaterfallTestSuite) TestAncestorsEarnMarginalShare() {
	// origin 0.3%, parent 0.6%, root 1.0%
	chain := suite.chain("0.3", "0.6", "1.0")
	awards := waterfallLevels(chain, decimal.NewFromInt(100000))

	suite.Require().Len(awards, 3)

	suite.True(awards[0].EffectiveRate.Equal(decimal.RequireFromString("0.3")))
	suite.True(awards[0].Amount.Equal(decimal.NewFromInt(300)))

	suite.True(awards[1].EffectiveRate.Equal(decimal.RequireFromString("0.3")))
	suite.True(awards[1].Amount.Equal(decimal.NewFromInt(300)))

	suite.True(awards[2].EffectiveRate.Equal(decimal.RequireFromString("0.4")))
	suite.True(awards[2].Amount.Equal(decimal.NewFromInt(400)))

	// The telescoping sum reconstructs the top rate exactly.
	total := decimal.Zero
	for _, award := range awards {
		total = total.Add(award.EffectiveRate)
	}
	suite.True(total.Equal(decimal.RequireFromString("1.0")))
}

func (suite *WaterfallTestSuite) TestDownstreamNodeWithHigherRateCapturesEverything() {
	// A 1.0% -> B 0.6% -> C 0.3%: B and C sit below A's rate, so only A
	// earns and the round pays out 1,000 on a 100,000 bet.
	chain := suite.chain("1.0", "0.6", "0.3")
	awards := waterfallLevels(chain, decimal.NewFromInt(100000))

	suite.Require().Len(awards, 1)
	suite.Equal(chain[0].AgentID, awards[0].AgentID)
	suite.Equal(1, awards[0].Level)
	suite.True(awards[0].Amount.Equal(decimal.NewFromInt(1000)))
}

func (suite *WaterfallTestSuite) TestSkippedLevelStillAnchorsTheNextMargin() {
	// The margin is always taken against the previous chain position's
	// rate, including positions that earned nothing themselves.
	chain := suite.chain("0.5", "0.4", "0.8")
	awards := waterfallLevels(chain, decimal.NewFromInt(10000))

	suite.Require().Len(awards, 2)
	suite.Equal(1, awards[0].Level)
	suite.Equal(3, awards[1].Level)
	// 0.8 - 0.4, not 0.8 - 0.5
	suite.True(awards[1].EffectiveRate.Equal(decimal.RequireFromString("0.4")))
	suite.True(awards[1].Amount.Equal(decimal.NewFromInt(40)))
}

func (suite *WaterfallTestSuite) TestRoundsHalfUpToTwoDecimals() {
	// 1234 * 0.45% = 5.553 -> 5.55; 1235 * 0.45% = 5.5575 -> 5.56
	chain := suite.chain("0.45")

	awards := waterfallLevels(chain, decimal.NewFromInt(1234))
	suite.Require().Len(awards, 1)
	suite.True(awards[0].Amount.Equal(decimal.RequireFromString("5.55")))

	awards = waterfallLevels(chain, decimal.NewFromInt(1235))
	suite.Require().Len(awards, 1)
	suite.True(awards[0].Amount.Equal(decimal.RequireFromString("5.56")))
}

func (suite *WaterfallTestSuite) TestAmountRoundingToZeroSkipsLevel() {
	chain := suite.chain("0.1")
	awards := waterfallLevels(chain, decimal.NewFromInt(1))

	suite.Empty(awards)
}

func (suite *WaterfallTestSuite) TestZeroRatesProduceNothing() {
	chain := suite.chain("0", "0", "0")
	awards := waterfallLevels(chain, decimal.NewFromInt(100000))

	suite.Empty(awards)
}

func (suite *WaterfallTestSuite) TestEmptyChain() {
	awards := waterfallLevels(nil, decimal.NewFromInt(100000))
	suite.Empty(awards)
}

func TestWaterfallSuite(t *testing.T) {
	suite.Run(t, new(WaterfallTestSuite))
}

func TestLevelsAreOneBasedChainPositions(t *testing.T) {
	chain := []ratedLevel{
		{AgentID: uuid.New(), Rate: decimal.RequireFromString("0.2")},
		{AgentID: uuid.New(), Rate: decimal.RequireFromString("0.5")},
		{AgentID: uuid.New(), Rate: decimal.RequireFromString("0.5")},
		{AgentID: uuid.New(), Rate: decimal.RequireFromString("0.9")},
	}

	awards := waterfallLevels(chain, decimal.NewFromInt(50000))

	assert.Len(t, awards, 3)
	assert.Equal(t, 1, awards[0].Level)
	assert.Equal(t, 2, awards[1].Level)
	assert.Equal(t, 4, awards[2].Level)
}
