package provider

import (
	"testing"

	"github.com/rxtech-lab/swing-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type ProviderTestSuite struct {
	suite.Suite
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}

func (suite *ProviderTestSuite) TestTypeValidate() {
	suite.NoError(TypePolygon.Validate())
	suite.NoError(TypeBinance.Validate())

	err := Type("yahoo").Validate()
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *ProviderTestSuite) TestNewProvider() {
	binanceProvider, err := NewProvider(TypeBinance, "")
	suite.Require().NoError(err)
	suite.NotNil(binanceProvider)

	polygonProvider, err := NewProvider(TypePolygon, "test-key")
	suite.Require().NoError(err)
	suite.NotNil(polygonProvider)

	_, err = NewProvider(TypePolygon, "")
	suite.Error(err)

	_, err = NewProvider(Type("yahoo"), "")
	suite.Error(err)
}
