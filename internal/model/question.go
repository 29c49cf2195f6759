package model

// Question 题库中的单道选择题，启动时加载后只读
type Question struct {
	ID       string `json:"Id"`
	Question string `json:"Question"`
	OptionA  string `json:"OptionA"`
	OptionB  string `json:"OptionB"`
	OptionC  string `json:"OptionC"`
	OptionD  string `json:"OptionD"`
	Answer   string `json:"-"` // 正确答案不下发给前端
}
