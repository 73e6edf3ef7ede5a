package synthetic

import (
	"math"
	"math/rand/v2"

	"game-recommender-go/internal/quiz"
)

// Sample 是一个模拟用户的完整作答。
type Sample struct {
	Archetype string
	Values    [quiz.NumQuestions]int
}

// Generate 为原型生成 NumUsers 份作答：
// 每题取 round(normal(mean, stddev)) 并截断到 [1,5]，舍入规则为四舍六入五成双。
func Generate(a Archetype, rng *rand.Rand) []Sample {
	samples := make([]Sample, a.NumUsers)
	for u := range samples {
		samples[u].Archetype = a.Name
		for q := 0; q < quiz.NumQuestions; q++ {
			v := rng.NormFloat64()*a.StdDev + a.Means[q]
			samples[u].Values[q] = quiz.Clamp(int(math.RoundToEven(v)))
		}
	}
	return samples
}

// GenerateAll 依次为所有原型生成数据。
func GenerateAll(archetypes []Archetype, rng *rand.Rand) []Sample {
	var all []Sample
	for _, a := range archetypes {
		all = append(all, Generate(a, rng)...)
	}
	return all
}

// NewRand 返回一个随机源；seed 为 0 时使用非确定性种子。
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed))
}

// RoundedMeans 返回原型均值四舍五入后的作答向量。
func (a Archetype) RoundedMeans() map[int]int {
	answers := make(map[int]int, quiz.NumQuestions)
	for i, m := range a.Means {
		answers[i+1] = quiz.Clamp(int(math.Round(m)))
	}
	return answers
}
