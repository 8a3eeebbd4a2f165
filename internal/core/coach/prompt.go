// Package coach builds the prompts sent to the language model and validates
// the JSON it sends back. Both directions are pure string work.
package coach

import (
	"fmt"
	"strings"

	"github.com/comitanigiacomo/kanso-rise/internal/core/domain"
)

const jsonOnlyInstruction = "有効なJSONのみを出力してください（マークダウンやコードブロックは使用しないでください）。"

// HabitStackPrompt asks for a 3-7 step morning routine for the target wake
// time. The user context line is present only when UserContext is set.
func HabitStackPrompt(in domain.HabitStackPromptInput) string {
	var b strings.Builder

	b.WriteString("あなたは習慣形成のコーチで、特に朝のルーティン作りを専門としています。\n\n")
	fmt.Fprintf(&b, "ユーザーの目標: 毎朝%sに起きる\n", in.TargetTime)
	if in.UserContext != "" {
		fmt.Fprintf(&b, "追加情報: %s\n", in.UserContext)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "次の条件を満たす**習慣スタック**（%d〜%d個の連続した行動）を作成してください：\n\n",
		domain.MinHabitStackSize, domain.MaxHabitStackSize)
	b.WriteString("1. 具体的ですぐに実行できる行動であること（例：「アラームを止める」「カーテンを開けて光を浴びる」）\n")
	b.WriteString("2. 各行動は1〜5分で終わること\n")
	b.WriteString("3. 簡単な行動から始めて、少しずつ負荷を上げる順番にすること\n")
	b.WriteString("4. 光・体の動き・水分補給など、目を覚ます行動を含めること\n")
	fmt.Fprintf(&b, "5. habitStack の要素数は必ず%d個以上%d個以下にすること\n\n",
		domain.MinHabitStackSize, domain.MaxHabitStackSize)

	b.WriteString("出力形式（JSON）：\n")
	b.WriteString("{\n")
	b.WriteString("  \"habitStack\": [\n")
	b.WriteString("    {\"step\": \"アラームを止めてすぐに起き上がる\", \"order\": 1},\n")
	b.WriteString("    {\"step\": \"カーテンを開けて自然光を浴びる\", \"order\": 2},\n")
	b.WriteString("    {\"step\": \"コップ1杯の水を飲む\", \"order\": 3}\n")
	b.WriteString("  ],\n")
	fmt.Fprintf(&b, "  \"rationale\": \"%s起床を支えるこの順番の理由を簡潔に\"\n", in.TargetTime)
	b.WriteString("}\n\n")

	b.WriteString(jsonOnlyInstruction)

	return b.String()
}

// WeeklyReflectionPrompt asks for a summary, insights, suggestions and an
// encouraging message about one week of check-ins. Reason lines are included
// only when the corresponding list is not empty.
func WeeklyReflectionPrompt(in domain.WeeklyReflectionInput) string {
	var b strings.Builder

	b.WriteString("あなたは習慣形成のコーチです。ユーザーの1週間の起床記録を分析し、気づきと改善の提案をしてください。\n\n")

	fmt.Fprintf(&b, "**週間データ（%s 〜 %s）**\n", in.WeekStart, in.WeekEnd)
	fmt.Fprintf(&b, "- 達成率: %.0f%% (%.2f)\n", in.CompletionRate*100, in.CompletionRate)
	fmt.Fprintf(&b, "- 連続日数: %d日\n", in.CurrentStreak)

	avg := "データなし"
	if in.AvgWakeTime != nil {
		avg = *in.AvgWakeTime
	}
	fmt.Fprintf(&b, "- 平均起床時刻: %s\n", avg)
	fmt.Fprintf(&b, "- 目標起床時刻: %s\n", in.TargetTime)

	if len(in.SnoozeReasons) > 0 {
		fmt.Fprintf(&b, "- スヌーズ理由: %s\n", strings.Join(in.SnoozeReasons, ", "))
	}
	if len(in.SkipReasons) > 0 {
		fmt.Fprintf(&b, "- スキップ理由: %s\n", strings.Join(in.SkipReasons, ", "))
	}
	b.WriteString("\n")

	b.WriteString("次の形式でJSONを出力してください：\n\n")
	b.WriteString("{\n")
	b.WriteString("  \"summary\": \"今週の全体的な振り返り（1〜2文）\",\n")
	b.WriteString("  \"insights\": [\n")
	b.WriteString("    \"データから読み取れる具体的な気づき1\",\n")
	b.WriteString("    \"データから読み取れる具体的な気づき2\"\n")
	b.WriteString("  ],\n")
	b.WriteString("  \"suggestions\": [\n")
	b.WriteString("    \"来週に向けた具体的な提案1\",\n")
	b.WriteString("    \"来週に向けた具体的な提案2\"\n")
	b.WriteString("  ],\n")
	b.WriteString("  \"encouragement\": \"前向きな励ましのメッセージ\"\n")
	b.WriteString("}\n\n")

	b.WriteString("**ガイドライン**：\n")
	b.WriteString("- 達成率が70%以上なら称賛し、70%未満なら前向きなフィードバックをする\n")
	b.WriteString("- スヌーズ/スキップ理由から具体的なパターンを指摘する\n")
	b.WriteString("- 小さく実行しやすい改善案を含める\n")
	b.WriteString("- 日本語で、親しみやすくポジティブなトーンで書く\n\n")

	b.WriteString(jsonOnlyInstruction)

	return b.String()
}
