package service

import (
	"language_gems_backend/internal/model"
	"testing"
)

func TestCalculateGems(t *testing.T) {
	tests := []struct {
		name        string
		correct     int
		attempted   int
		accuracy    float64
		hints       int
		sessionType model.SessionType
		want        int
	}{
		{
			name:        "满分测试会话",
			correct:     10,
			attempted:   10,
			accuracy:    100,
			hints:       0,
			sessionType: model.SessionTest,
			// 10*5 + floor(10*1.0) + 10
			want: 70,
		},
		{
			name:        "练习会话一半正确且提示过多",
			correct:     5,
			attempted:   10,
			accuracy:    50,
			hints:       8,
			sessionType: model.SessionPractice,
			// 5*2 - floor(8*0.5)
			want: 6,
		},
		{
			name:        "零正确也有保底一颗",
			correct:     0,
			attempted:   5,
			accuracy:    0,
			hints:       0,
			sessionType: model.SessionPractice,
			want:        1,
		},
		{
			name:        "零答题不触发全对奖励",
			correct:     0,
			attempted:   0,
			accuracy:    0,
			hints:       0,
			sessionType: model.SessionTest,
			want:        1,
		},
		{
			name:        "准确率刚好90只命中高档",
			correct:     9,
			attempted:   10,
			accuracy:    90,
			hints:       0,
			sessionType: model.SessionPractice,
			// 9*2 + floor(9*0.5)
			want: 22,
		},
		{
			name:        "准确率75命中低档",
			correct:     6,
			attempted:   8,
			accuracy:    75,
			hints:       0,
			sessionType: model.SessionTest,
			// 6*5 + floor(6*0.5)
			want: 33,
		},
		{
			name:        "准确率74无加成",
			correct:     6,
			attempted:   8,
			accuracy:    74.9,
			hints:       0,
			sessionType: model.SessionTest,
			want:        30,
		},
		{
			name:        "练习会话全对",
			correct:     10,
			attempted:   10,
			accuracy:    100,
			hints:       0,
			sessionType: model.SessionPractice,
			// 10*2 + floor(10*0.5) + 5
			want: 30,
		},
		{
			name:        "提示5次不扣分",
			correct:     4,
			attempted:   10,
			accuracy:    40,
			hints:       5,
			sessionType: model.SessionPractice,
			want:        8,
		},
		{
			name:        "提示6次开始扣分",
			correct:     4,
			attempted:   10,
			accuracy:    40,
			hints:       6,
			sessionType: model.SessionPractice,
			// 8 - floor(6*0.5)
			want: 5,
		},
		{
			name:        "测试会话提示不扣分",
			correct:     4,
			attempted:   10,
			accuracy:    40,
			hints:       20,
			sessionType: model.SessionTest,
			want:        20,
		},
		{
			name:        "课程会话提示不扣分",
			correct:     4,
			attempted:   10,
			accuracy:    40,
			hints:       20,
			sessionType: model.SessionLesson,
			want:        8,
		},
		{
			name:        "扣分阶段下限为1",
			correct:     1,
			attempted:   1,
			accuracy:    100,
			hints:       20,
			sessionType: model.SessionPractice,
			// 2 + 0 + 5 - 10 -> 钳到 1
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateGems(tt.correct, tt.attempted, tt.accuracy, tt.hints, tt.sessionType)
			if got != tt.want {
				t.Errorf("CalculateGems(%d, %d, %.1f, %d, %s) = %d, want %d",
					tt.correct, tt.attempted, tt.accuracy, tt.hints, tt.sessionType, got, tt.want)
			}
		})
	}
}

// 相同输入下测试会话的宝石数不应低于练习会话
func TestCalculateGemsTestNotLessThanPractice(t *testing.T) {
	cases := []struct {
		correct, attempted, hints int
		accuracy                  float64
	}{
		{0, 10, 0, 0},
		{5, 10, 0, 50},
		{8, 10, 3, 80},
		{9, 10, 7, 90},
		{10, 10, 12, 100},
	}
	for _, c := range cases {
		test := CalculateGems(c.correct, c.attempted, c.accuracy, c.hints, model.SessionTest)
		practice := CalculateGems(c.correct, c.attempted, c.accuracy, c.hints, model.SessionPractice)
		if test < practice {
			t.Errorf("test session earned %d gems, practice earned %d for correct=%d hints=%d",
				test, practice, c.correct, c.hints)
		}
	}
}

// 提示数增加时宝石数不应增加
func TestCalculateGemsHintPenaltyMonotonic(t *testing.T) {
	prev := CalculateGems(6, 10, 60, 0, model.SessionPractice)
	for hints := 1; hints <= 30; hints++ {
		got := CalculateGems(6, 10, 60, hints, model.SessionPractice)
		if got > prev {
			t.Errorf("gems increased from %d to %d when hints went to %d", prev, got, hints)
		}
		if got < 1 {
			t.Errorf("gems fell below 1 at hints=%d: %d", hints, got)
		}
		prev = got
	}
}

func TestDeriveGameType(t *testing.T) {
	tests := []struct {
		sessionType model.SessionType
		sessionMode model.SessionMode
		want        string
	}{
		{model.SessionPractice, model.ModeAssignment, "grammar_assignment"},
		{model.SessionTest, model.ModeAssignment, "grammar_assignment"},
		{model.SessionPractice, model.ModeFreePlay, "grammar_practice"},
		{model.SessionTest, model.ModeChallenge, "grammar_test"},
		{model.SessionLesson, model.ModePractice, "grammar_lesson"},
	}
	for _, tt := range tests {
		if got := DeriveGameType(tt.sessionType, tt.sessionMode); got != tt.want {
			t.Errorf("DeriveGameType(%s, %s) = %s, want %s", tt.sessionType, tt.sessionMode, got, tt.want)
		}
	}
}

func TestBuildGemEvents(t *testing.T) {
	events := BuildGemEvents("student-1", "session-1", "grammar_test", 3, 3)
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(events))
	}
	for i, e := range events {
		if e.StudentID != "student-1" || e.SessionID != "session-1" {
			t.Errorf("event %d has wrong owner: %+v", i, e)
		}
		if e.GemType != GemTypeGrammar || e.Rarity != GemRarityCommon {
			t.Errorf("event %d has wrong gem type/rarity: %+v", i, e)
		}
		if e.GameType != "grammar_test" {
			t.Errorf("event %d has wrong game type: %s", i, e.GameType)
		}
		if e.XPValue != 1 {
			t.Errorf("event %d xp = %d, want 1", i, e.XPValue)
		}
	}

	if events := BuildGemEvents("student-1", "session-1", "grammar_test", 0, 0); events != nil {
		t.Errorf("expected nil events for zero gems, got %d", len(events))
	}
}
