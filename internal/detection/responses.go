package detection

import "github.com/outlivehq/mindmitra/internal/database/types/enum"

// Canned intervention responses with regional helpline numbers. The bodies
// are fixed templates; downstream consumers must not rewrite them.
const (
	suicideResponse = `🚨 **Suicidal Ideation Detected**

Outlive Chat is a safe space to find peer support and tools to help manage difficult feelings and thoughts of ending your life. Please don't hesitate to reach out—support is just a text away:

👉 https://chat.outlive.in/landing-page
☎️ More helpline numbers at: https://www.aasra.info/helpline.html

You're not alone, and there are people who want to help you through this difficult time.`

	selfHarmResponse = `🩹 **Self-Harm Concerns Detected**

If you're struggling with self-harm urges, please reach out for support:

• **Kiran Mental Health Helpline**: 1800-599-0019
• **AASRA**: 022 2754 6669
• **Emergency Services**: 112

Self-harm is a sign that you're struggling with difficult emotions. Professional support can help you find healthier coping strategies.`

	homicidalResponse = `⚠️ **Safety Concern Detected**

If you're having thoughts about hurting others, it's important to seek immediate professional help:

• **Police**: 100
• **Mental Health Crisis Line**: 1800-599-0019
• **Emergency Services**: 112

These feelings can be addressed with proper support. Please reach out to a mental health professional right away.`

	abuseResponse = `🛡️ **Abuse Concern Detected**

AASRA – We're Here To Help. 💛

If you're feeling unsafe or experiencing abuse, please reach out:

• **AASRA**: 022 2754 6669
• **Women Helpline**: 1091
• **Child Helpline**: 1098
• **Police**: 100

Emergency Numbers Available 24/7. You're not alone. Help is available.`

	fallbackResponse = `🚨 **Crisis Support Available**

If you're in immediate danger, please contact emergency services:

• **Emergency Services**: 112
• **Mental Health Helpline**: 1800-599-0019

You're not alone. Professional help is available 24/7.`
)

// CrisisResponse returns the canned intervention response for a category.
func CrisisResponse(category enum.CrisisCategory) string {
	switch category {
	case enum.CategorySI:
		return suicideResponse
	case enum.CategorySH:
		return selfHarmResponse
	case enum.CategoryHI:
		return homicidalResponse
	case enum.CategoryEA:
		return abuseResponse
	case enum.CategoryNone, enum.CategoryModeration:
		return fallbackResponse
	}

	return fallbackResponse
}
