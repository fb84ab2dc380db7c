package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitsForPro(t *testing.T) {
	limits := LimitsFor(TypePro)

	assert.True(t, limits.CanSave)
	assert.True(t, limits.CanExport)
	assert.True(t, limits.CanShare)
	assert.True(t, limits.HasAudioTranscription)
	assert.False(t, limits.HasAPIAccess)
	assert.Equal(t, 100, limits.MeetingsLimit)
}

func TestLimitsForEnterpriseUnlimited(t *testing.T) {
	limits := LimitsFor(TypeEnterprise)

	assert.Equal(t, UnlimitedMeetings, limits.MeetingsLimit)
	assert.True(t, limits.HasAPIAccess)
	assert.True(t, limits.HasPrioritySupport)
}

func TestLimitsForUnknownFallsBackToFree(t *testing.T) {
	limits := LimitsFor(Type("platinum"))

	assert.False(t, limits.CanSave)
	assert.False(t, limits.CanExport)
	assert.Equal(t, 0, limits.MeetingsLimit)
	assert.Equal(t, DefaultSessionLimit, limits.SessionGenerationLimit)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid(TypeStarter))
	assert.False(t, Valid(Type("platinum")))
}

func TestNewPriceMap(t *testing.T) {
	m, err := NewPriceMap(map[string]string{
		"price_pro":     "pro",
		"price_starter": "starter",
	})
	require.NoError(t, err)

	planType, ok := m.PlanForPrice("price_pro")
	assert.True(t, ok)
	assert.Equal(t, TypePro, planType)

	_, ok = m.PlanForPrice("price_unknown")
	assert.False(t, ok)
}

func TestNewPriceMapRejectsUnknownPlan(t *testing.T) {
	_, err := NewPriceMap(map[string]string{"price_x": "platinum"})
	assert.ErrorIs(t, err, ErrUnknownPlan)
}

func TestPriceForPlan(t *testing.T) {
	m, err := NewPriceMap(map[string]string{"price_pro": "pro"})
	require.NoError(t, err)

	priceID, ok := m.PriceForPlan(TypePro)
	assert.True(t, ok)
	assert.Equal(t, "price_pro", priceID)

	_, ok = m.PriceForPlan(TypeEnterprise)
	assert.False(t, ok)
}
