// Package curation 保存人工整理的聚类定义：名称、描述、推荐游戏类型与推荐理由。
// 这些定义在离线查看训练出的质心后编写，并不由质心自动推导。
package curation

import "sort"

// Definition 是单个聚类的人工定义，ID 与 clusters 表的主键一一对应。
type Definition struct {
	ID          uint
	Name        string
	Description string
	Genres      []string
	Reason      string
}

var definitions = map[uint]Definition{
	1: {
		ID:          1,
		Name:        "도전적인 리더 (Challenging Leader)",
		Description: "빠르게 판단하고 끈기 있게 문제를 해결하며, 강력한 리더십으로 협력을 이끌고 도전과 경쟁을 즐기며 큰 그림을 보는 유형입니다.",
		Genres:      []string{"Shooter", "MOBA", "Strategy"},
		Reason:      "빠른 판단력과 리더십을 발휘할 수 있는 경쟁적인 장르가 잘 맞습니다. 팀을 이끌고 전략을 세워 승리하는 경험을 즐길 수 있습니다.",
	},
	2: {
		ID:          2,
		Name:        "신중한 분석가 (Prudent Analyst)",
		Description: "신중하게 분석하고 끈기 있게 문제를 해결하며, 안정적인 환경에서 꼼꼼하게 완벽을 추구하고 한 가지 일에 깊이 몰입하는 유형입니다.",
		Genres:      []string{"Strategy", "Card Game", "MMORPG"},
		Reason:      "복잡한 시스템을 분석하고 장기적인 계획을 세우는 것을 즐깁니다. 세밀한 자원 관리와 깊이 있는 전략이 요구되는 게임에서 두각을 나타낼 수 있습니다.",
	},
	3: {
		ID:          3,
		Name:        "전문적인 장인 (Expert Craftsman)",
		Description: "신중하고 끈기 있게 문제를 해결하며, 개인적인 공간에서 안정적으로 꼼꼼하게 완벽을 추구하고 한 가지 일에 깊이 몰입하여 익숙한 분야의 전문성을 높이는 유형입니다.",
		Genres:      []string{"MMORPG", "ARPG", "Action RPG"},
		Reason:      "하나의 캐릭터나 기술을 깊이 파고들어 마스터하는 것을 선호합니다. 아이템 제작, 자원 채집 등 특정 분야의 전문성을 높이는 데서 큰 만족을 느낍니다.",
	},
	4: {
		ID:          4,
		Name:        "협력적 탐험가 (Collaborative Explorer)",
		Description: "협력을 매우 선호하고 새로운 도전을 즐기며, 큰 그림을 보고 새로운 지식과 정답 없는 문제를 탐색하는 데 열정적인 유형입니다.",
		Genres:      []string{"MMORPG", "Social", "Co-Op"},
		Reason:      "다른 플레이어들과 함께 광활한 세계를 탐험하고 새로운 모험을 떠나는 것을 즐깁니다. 협력을 통해 공동의 목표를 달성하는 데서 기쁨을 느낍니다.",
	},
	5: {
		ID:          5,
		Name:        "창의적인 전략가 (Creative Strategist)",
		Description: "혁신적이고 틀에 얽매이지 않는 사고를 하며, 복잡한 시스템 속에서 자신만의 독창적인 해결책을 찾는 것을 즐기는 유형입니다.",
		Genres:      []string{"Strategy", "Sandbox", "Building"},
		Reason:      "정해진 규칙을 넘어 자신만의 창의적인 전략을 시험해볼 수 있는 게임이 잘 어울립니다. 복잡한 시스템을 자신만의 방식으로 해석하고 활용하는 데 능숙합니다.",
	},
	6: {
		ID:          6,
		Name:        "자유로운 해결사 (Independent Problem-Solver)",
		Description: "자율성을 중시하며, 누구의 도움 없이도 스스로 정보를 찾고 문제를 해결하는 과정에서 만족을 느끼는 독립적인 유형입니다.",
		Genres:      []string{"ARPG", "Action RPG", "Fighting"},
		Reason:      "다른 사람에게 의존하지 않고 자신의 실력과 판단만으로 어려움을 극복하는 게임을 선호합니다. 솔로 플레이가 강조되는 게임에서 큰 성취감을 느낄 수 있습니다.",
	},
	7: {
		ID:          7,
		Name:        "사교적인 중재자 (Social Mediator)",
		Description: "사람들과의 교류를 중요하게 생각하며, 경쟁보다는 소통과 화합을 통해 긍정적인 관계를 형성하는 것을 즐기는 유형입니다.",
		Genres:      []string{"Social", "MMORPG", "Co-Op"},
		Reason:      "다른 플레이어들과 소통하고 커뮤니티를 형성하는 재미를 느낄 수 있는 게임이 잘 맞습니다. 경쟁보다는 협력과 사교 활동에 중점을 둔 게임을 즐깁니다.",
	},
	8: {
		ID:          8,
		Name:        "안정적인 실행가 (Steady Executor)",
		Description: "명확한 목표와 절차를 선호하며, 꾸준하고 성실하게 과업을 수행하여 안정적으로 성장하는 과정에서 만족을 느끼는 유형입니다.",
		Genres:      []string{"Strategy", "MMORPG", "Card Game"},
		Reason:      "규칙적으로 일일 퀘스트를 수행하거나 자원을 관리하며 꾸준히 성장하는 게임을 즐깁니다. 예측 가능하고 안정적인 환경에서 성실하게 목표를 달성하는 데서 재미를 느낍니다.",
	},
}

// Lookup 按聚类编号查找定义。
func Lookup(id uint) (Definition, bool) {
	d, ok := definitions[id]
	if !ok {
		return Definition{}, false
	}
	d.Genres = append([]string(nil), d.Genres...)
	return d, true
}

// All 按编号升序返回全部定义。
func All() []Definition {
	ids := make([]uint, 0, len(definitions))
	for id := range definitions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]Definition, 0, len(ids))
	for _, id := range ids {
		d, _ := Lookup(id)
		out = append(out, d)
	}
	return out
}
