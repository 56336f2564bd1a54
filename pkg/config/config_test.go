package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30*time.Minute, cfg.Allotment.ProposalTTL)
	assert.True(t, cfg.Allotment.SortByRollNumber)
	assert.Equal(t, "seated", cfg.Allotment.HeadcountBasis)
	assert.Equal(t, "allotment.committed", cfg.Publication.RabbitMQQueue)
	assert.Equal(t, "allotments", cfg.Publication.FirestoreCollection)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("ALLOTMENT_HEADCOUNT_BASIS", " Capacity ")
	v.Set("ALLOTMENT_PROPOSAL_TTL", "bogus")
	v.Set("ALLOTMENT_SORT_BY_ROLL", false)
	v.Set("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, "capacity", cfg.Allotment.HeadcountBasis)
	assert.Equal(t, 30*time.Minute, cfg.Allotment.ProposalTTL)
	assert.False(t, cfg.Allotment.SortByRollNumber)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
