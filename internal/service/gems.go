package service

import (
	"language_gems_backend/internal/model"
	"math"
)

const (
	GemTypeGrammar  = "grammar"
	GemRarityCommon = "common"
)

// CalculateGems 根据会话表现计算宝石数。
// 测试会话每题基础 5 颗，其余 2 颗；正确率加成只取首个命中的档位；
// 全对有固定奖励；练习会话提示超过 5 次开始扣分，扣分阶段不低于 1；
// 最终结果下限为 1（完赛保底，零正确也给 1 颗）。
func CalculateGems(questionsCorrect, questionsAttempted int, accuracyPercentage float64, hintsUsed int, sessionType model.SessionType) int {
	isTest := sessionType == model.SessionTest

	base := 2
	if isTest {
		base = 5
	}
	gems := questionsCorrect * base

	// 正确率加成，从高到低只命中一档
	if accuracyPercentage >= 90 {
		multiplier := 0.5
		if isTest {
			multiplier = 1.0
		}
		gems += int(math.Floor(float64(questionsCorrect) * multiplier))
	} else if accuracyPercentage >= 75 {
		multiplier := 0.25
		if isTest {
			multiplier = 0.5
		}
		gems += int(math.Floor(float64(questionsCorrect) * multiplier))
	}

	// 全对奖励
	if questionsAttempted > 0 && questionsCorrect == questionsAttempted {
		if isTest {
			gems += 10
		} else {
			gems += 5
		}
	}

	// 提示扣分，仅练习会话
	if sessionType == model.SessionPractice && hintsUsed > 5 {
		gems -= int(math.Floor(float64(hintsUsed) * 0.5))
		if gems < 1 {
			gems = 1
		}
	}

	if gems < 1 {
		gems = 1
	}
	return gems
}

// DeriveGameType 从会话类型/模式推导宝石的 game_type 标签
func DeriveGameType(sessionType model.SessionType, sessionMode model.SessionMode) string {
	if sessionMode == model.ModeAssignment {
		return "grammar_assignment"
	}
	return "grammar_" + string(sessionType)
}

// BuildGemEvents 把一次会话的总 XP 平均摊到每颗宝石上，
// 整数除法的余数直接舍弃。
func BuildGemEvents(studentID, sessionID, gameType string, gemsEarned, xpEarned int) []model.GemEvent {
	if gemsEarned <= 0 {
		return nil
	}
	xpPerGem := xpEarned / gemsEarned
	events := make([]model.GemEvent, gemsEarned)
	for i := range events {
		events[i] = model.GemEvent{
			StudentID: studentID,
			SessionID: sessionID,
			GemType:   GemTypeGrammar,
			Rarity:    GemRarityCommon,
			GameType:  gameType,
			XPValue:   xpPerGem,
		}
	}
	return events
}
