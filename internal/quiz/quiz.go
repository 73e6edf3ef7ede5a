// Package quiz 定义了性格问卷的固定题目与取值范围。
package quiz

import "fmt"

const (
	// NumQuestions 是问卷题目数量，也是特征向量的维度。
	NumQuestions = 15
	// MinValue 与 MaxValue 是李克特量表的取值范围。
	MinValue = 1
	MaxValue = 5
	// NeutralValue 用于填充推理时未作答的题目。
	NeutralValue = 3
)

// QuestionTexts 按题号顺序（1..15）保存题目文本，每 3 题对应一个维度：
// 决策、互动、挑战、细节、学习。
var QuestionTexts = [NumQuestions]string{
	"나는 중요한 결정을 내릴 때 충분한 정보를 수집하고 신중하게 분석하는 편이다.",
	"나는 예상치 못한 상황에 직면했을 때 빠르게 판단하고 즉시 행동하는 것을 선호한다.",
	"나는 복잡한 문제에 부딪혔을 때 포기하지 않고 끈기 있게 해결책을 찾아낸다.",
	"나는 혼자서 목표를 달성하는 것보다 다른 사람들과 협력하여 성과를 내는 것을 선호한다.",
	"나는 팀 프로젝트에서 리더 역할을 맡아 전체를 조율하는 것에 흥미를 느낀다.",
	"나는 개인적인 공간에서 방해받지 않고 집중하여 작업할 때 가장 효율적이다.",
	"나는 새로운 도전과 위험을 감수하면서 성장하는 것을 두려워하지 않는다.",
	"나는 예측 가능하고 안정적인 환경에서 일할 때 편안함을 느낀다.",
	"나는 목표 달성을 위해 경쟁하는 상황에서 더 큰 동기 부여를 얻는다.",
	"나는 작은 부분까지 꼼꼼하게 신경 쓰고 완벽을 추구하는 편이다.",
	"나는 전체적인 흐름과 큰 그림을 파악하는 데 더 집중한다.",
	"나는 여러 가지 일을 동시에 처리하기보다 한 가지 일에 깊이 몰입하는 것을 선호한다.",
	"나는 새로운 지식이나 기술을 배우고 탐구하는 과정 자체를 즐긴다.",
	"나는 정답이 없는 문제에 대해 다양한 가능성을 열어두고 탐색하는 것을 좋아한다.",
	"나는 이미 익숙한 분야에서 전문성을 발휘하고 숙련도를 높이는 것을 선호한다.",
}

// ValidQuestionID 判断题号是否在 1..NumQuestions 之内。
func ValidQuestionID(id int) bool {
	return id >= 1 && id <= NumQuestions
}

// ValidateAnswer 校验单个作答。
func ValidateAnswer(questionID, value int) error {
	if !ValidQuestionID(questionID) {
		return fmt.Errorf("question_id %d out of range [1,%d]", questionID, NumQuestions)
	}
	if value < MinValue || value > MaxValue {
		return fmt.Errorf("response_value %d for question %d out of range [%d,%d]", value, questionID, MinValue, MaxValue)
	}
	return nil
}

// Clamp 将取值截断到 [MinValue, MaxValue]。
func Clamp(v int) int {
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
