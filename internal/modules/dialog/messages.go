// README: Bot message texts; prompt variants per dialogue step.
package dialog

import "yahu/internal/modules/session"

const (
	msgNeedLocation = "يرجى إرسال موقعك الحالي أولاً."

	msgDestinationNotFound = "لم أتمكن من العثور على هذا المكان. جرب مكان آخر أو أعد كتابة العنوان.\nمثال: 'الشعلان'، 'المزة'، 'ساحة الأمويين'"
	msgChoiceNotFound      = "ما لقيت المكان، جرب تكتب عنوان أوضح أو مختلف."
	msgPickupNotFound      = "لم أتمكن من العثور على هذا المكان كنقطة انطلاق. جرب عنوان آخر."
	msgPickupChoiceLost    = "ما لقيت المكان كنقطة انطلاق. جرب عنوان أوضح أو مختلف."

	msgMultipleFound       = "وجدت أكثر من مكان:"
	msgMultiplePickupFound = "وجدت أكثر من مكان كنقطة انطلاق:"
	msgPickFromList        = "اختر رقم أو اسم المكان المطلوب."

	msgCancelled   = "تم إلغاء الحجز. هل تود بدء حجز جديد؟"
	msgReset       = "تمام، ألغينا كل شي. ابعت موقعك من جديد لنبدأ حجز جديد."
	msgFallback    = "كيف أقدر أخدمك؟"
	msgLLMTrouble  = "صار عندي مشكلة تقنية بسيطة، جرب مرة ثانية بعد شوي."
	msgServerError = "عذراً، حدث خطأ. حاول مرة أخرى."
)

// promptsByState holds the variant prompts asked when a step begins. One is
// picked at random per turn so the bot does not repeat itself verbatim.
var promptsByState = map[session.State][]string{
	session.StateAskDestination: {
		"مرحباً! أنا يا هو، مساعدك الذكي للمشاوير 🚖.\nوين حابب تروح اليوم؟",
		"هلا فيك! حددلي وجهتك لو سمحت.",
		"أهلين، شو عنوان المكان يلي رايح عليه؟",
		"يسعد مساك! خبرني وين وجهتك اليوم.",
		"وين بدك أوصلك اليوم؟",
	},
	session.StateAskPickup: {
		"من وين نوصلك؟ من موقعك الحالي ولا في نقطة ثانية؟",
		"اختر نقطة الانطلاق: موقعك الحالي أو مكان آخر.",
		"حابب أجيك ععنوانك الحالي ولا حابب تغير؟",
		"حددلي من وين حابب تبدأ الرحلة.",
	},
	session.StateAskTime: {
		"وقت الرحلة متى تفضّل؟ الآن ولا بتوقيت محدد؟",
		"تحب ننطلق فوراً ولا تحدد وقت لاحق؟",
		"خبرني متى الوقت المناسب للانطلاق.",
	},
	session.StateAskCarType: {
		"أي نوع سيارة بدك؟ عادية ولا VIP؟",
		"تفضّل سيارة عادية ولا بدك تجربة فاخرة (VIP)؟",
		"خبرني نوع السيارة: عادية أم VIP؟",
	},
	session.StateAskAudio: {
		"تحب نسمع شي أثناء الرحلة؟ قرآن، موسيقى، أو تفضّل الصمت؟",
		"اختر نوع الصوت: قرآن، موسيقى، أم بلا صوت.",
		"حابب نضيف لمسة موسيقية أو تحب الجو هادي؟",
	},
	session.StateAskReciter: {
		"تمام، عندك قارئ أو تلاوة مفضلة؟ خبرني أو اكتب 'أي شي'.",
		"مين القارئ يلي تحب تسمعله؟",
	},
	session.StateConfirmBooking: {
		"راجع ملخص الطلب وأكد إذا كل شي تمام 👇",
		"هذي تفاصيل رحلتك! إذا في شي مو واضح صححلي، أو أكد الحجز.",
		"قبل نأكد الحجز، شوف التفاصيل بالأسفل.",
	},
}

// assistantSystemPrompt conditions the LLM used for off-topic small talk.
const assistantSystemPrompt = `أنت مساعد صوتي ذكي اسمك "يا هو" داخل تطبيق تاكسي متطور. مهمتك مساعدة المستخدمين في حجز المشاوير بطريقة سهلة وودودة.
- استخدم نفس لغة المستخدم في كل رد (عربي أو إنجليزي)
- اسأل سؤالاً واحداً واضحاً في كل مرة
- كن ودوداً ومفيداً
- تذكر المعلومات السابقة في المحادثة
- إذا الموضوع خارج حجز التاكسي، جاوب بلطف ثم ذكّر المستخدم أنه بإمكانه حجز مشوار
خطوات الحجز:
1. الوجهة
2. نقطة الانطلاق (الموقع الحالي أو مكان آخر)
3. الوقت
4. نوع السيارة (عادية أو VIP)
5. تفضيلات الصوت (قرآن، موسيقى، صمت)
6. ملخص الطلب والتأكيد`
