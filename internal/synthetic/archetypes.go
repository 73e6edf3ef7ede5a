// Package synthetic 生成用于冷启动训练的模拟问卷数据。
package synthetic

// Archetype 描述一种典型人格：每道题的目标均值、统一的噪声标准差以及生成人数。
type Archetype struct {
	Name     string
	Means    [15]float64
	StdDev   float64
	NumUsers int
}

// DefaultArchetypes 返回内置的四种人格原型。
// 每 3 题为一个维度：决策、互动、挑战、细节、学习。
func DefaultArchetypes() []Archetype {
	return []Archetype{
		{
			Name: "Strategic Planner",
			Means: [15]float64{
				5, 2, 4, // 决策：重分析、慢判断、高坚持
				3, 4, 2, // 互动：中等协作、高领导、低独处
				3, 4, 2, // 挑战：中等冒险、高稳定、低竞争
				5, 2, 4, // 细节：高细节、低全局、高专注
				4, 3, 3, // 学习
			},
			StdDev:   0.8,
			NumUsers: 100,
		},
		{
			Name: "Action-Oriented Leader",
			Means: [15]float64{
				3, 5, 4,
				4, 5, 1,
				5, 2, 5,
				2, 4, 3,
				3, 4, 2,
			},
			StdDev:   0.8,
			NumUsers: 100,
		},
		{
			Name: "Collaborative Explorer",
			Means: [15]float64{
				3, 3, 3,
				5, 3, 3,
				4, 3, 3,
				3, 4, 2,
				5, 5, 1,
			},
			StdDev:   0.8,
			NumUsers: 100,
		},
		{
			Name: "Detail-Oriented Specialist",
			Means: [15]float64{
				4, 2, 5,
				2, 2, 5,
				2, 5, 1,
				5, 1, 5,
				4, 2, 5,
			},
			StdDev:   0.8,
			NumUsers: 100,
		},
	}
}

// FindArchetype 按名称查找内置原型。
func FindArchetype(name string) (Archetype, bool) {
	for _, a := range DefaultArchetypes() {
		if a.Name == name {
			return a, true
		}
	}
	return Archetype{}, false
}
