package test

import (
	"math/rand"
	"time"

	"github.com/jaswdr/faker"
	"github.com/onsi/ginkgo/v2"
)

var (
	Source = rand.NewSource(ginkgo.GinkgoRandomSeed())
	Faker  = faker.NewWithSeed(Source)
	Rand   = rand.New(Source)
)

// RandomFloat returns a random value in [min, max) rounded to one decimal place
func RandomFloat(min, max float64) float64 {
	v := min + Rand.Float64()*(max-min)
	return float64(int64(v*10)) / 10
}

// RandomTimeWithin returns a random instant between now-d and now
func RandomTimeWithin(d time.Duration) time.Time {
	offset := time.Duration(Rand.Int63n(int64(d)))
	return time.Now().Add(-offset).Truncate(time.Millisecond)
}
