package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type UtilsTestSuite struct {
	suite.Suite
}

func TestUtilsSuite(t *testing.T) {
	suite.Run(t, new(UtilsTestSuite))
}

type windowConfig struct {
	Period int     `json:"period" jsonschema:"title=Period,minimum=1,default=14"`
	Ratio  float64 `json:"ratio" jsonschema:"description=Threshold ratio"`
}

type sessionConfig struct {
	Name   string       `json:"name"`
	Window windowConfig `json:"window"`
}

func (suite *UtilsTestSuite) TestToJSONSchema() {
	schema, err := ToJSONSchema(windowConfig{})
	suite.Require().NoError(err)

	var result map[string]any
	suite.Require().NoError(json.Unmarshal([]byte(schema), &result))

	properties, ok := result["properties"].(map[string]any)
	suite.Require().True(ok)
	suite.Contains(properties, "period")
	suite.Contains(properties, "ratio")
}

func (suite *UtilsTestSuite) TestToJSONSchemaInlinesNested() {
	schema, err := ToJSONSchema(sessionConfig{})
	suite.Require().NoError(err)
	suite.NotContains(schema, "$defs")
	suite.Contains(schema, "Threshold ratio")
}
