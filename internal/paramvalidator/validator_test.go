package paramvalidator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

func TestValidate_FillsDefaults(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeInt, DefaultValue: 42}
	out, verr := Validate([]model.ParamType{p1}, model.ParamValues{}, SourceUser)
	require.Nil(t, verr)
	assert.Equal(t, 42, out[p1.ID])
}

func TestValidate_MissingRequired(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeInt}
	_, verr := Validate([]model.ParamType{p1}, model.ParamValues{}, SourceUser)
	require.NotNil(t, verr)
	assert.Equal(t, status.MissingParameter, verr.Code)
}

func TestValidate_ReadOnlyRejectedFromUser(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeBool, ReadOnly: true, DefaultValue: false}
	_, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: true}, SourceUser)
	require.NotNil(t, verr)
	assert.Equal(t, status.ParameterNotWritable, verr.Code)
}

func TestValidate_ReadOnlyAllowedFromDiscovery(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeBool, ReadOnly: true, DefaultValue: false}
	out, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: true}, SourceDiscovery)
	require.Nil(t, verr)
	assert.Equal(t, true, out[p1.ID])
}

func TestValidate_RangeCheck(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeInt, MinValue: 0, MaxValue: 100, DefaultValue: 0}
	_, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: 150}, SourceUser)
	require.NotNil(t, verr)
	assert.Equal(t, status.InvalidParameter, verr.Code)

	out, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: 50}, SourceUser)
	require.Nil(t, verr)
	assert.Equal(t, 50, out[p1.ID])
}

func TestValidate_AllowedValues(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeString, AllowedValues: []interface{}{"red", "green"}, DefaultValue: "red"}
	_, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: "blue"}, SourceUser)
	require.NotNil(t, verr)

	out, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: "green"}, SourceUser)
	require.Nil(t, verr)
	assert.Equal(t, "green", out[p1.ID])
}

func TestValidate_ConversionFailure(t *testing.T) {
	p1 := model.ParamType{ID: model.NewID(), Type: model.TypeInt, DefaultValue: 0}
	_, verr := Validate([]model.ParamType{p1}, model.ParamValues{p1.ID: "not-an-int"}, SourceUser)
	require.NotNil(t, verr)
	assert.Equal(t, status.InvalidParameter, verr.Code)
}
