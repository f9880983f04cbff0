package i18n

type text struct {
	en string
	ar string
}

var messages = map[string]text{
	"order.status.new": {
		en: "New",
		ar: "جديد",
	},
	"order.status.preparing": {
		en: "Preparing",
		ar: "قيد التحضير",
	},
	"order.status.delivered": {
		en: "Delivered",
		ar: "تم التوصيل",
	},

	"api.network": {
		en: "Unable to reach the restaurant server. Please check your connection.",
		ar: "تعذر الوصول إلى خادم المطعم. يرجى التحقق من الاتصال.",
	},
	"api.dns": {
		en: "The restaurant server address could not be resolved.",
		ar: "تعذر العثور على عنوان خادم المطعم.",
	},
	"api.timeout": {
		en: "The restaurant server took too long to respond. Please try again.",
		ar: "استغرق خادم المطعم وقتا طويلا للرد. يرجى المحاولة مرة أخرى.",
	},
	"api.unauthorized": {
		en: "Your sign-in has expired. Please sign in again.",
		ar: "انتهت صلاحية تسجيل الدخول. يرجى تسجيل الدخول مرة أخرى.",
	},
	"api.forbidden": {
		en: "Access denied.",
		ar: "تم رفض الوصول.",
	},
	"api.not_found": {
		en: "The requested resource was not found.",
		ar: "لم يتم العثور على المورد المطلوب.",
	},
	"api.server": {
		en: "The restaurant server encountered an error. Please try again.",
		ar: "حدث خطأ في خادم المطعم. يرجى المحاولة مرة أخرى.",
	},
	"api.client": {
		en: "The request could not be completed.",
		ar: "تعذر إكمال الطلب.",
	},

	"error.session_expired": {
		en: "Your session has expired. Please scan the table QR code again.",
		ar: "انتهت صلاحية الجلسة. يرجى مسح رمز QR الخاص بالطاولة مرة أخرى.",
	},
	"error.no_session": {
		en: "No active session. Please scan the table QR code.",
		ar: "لا توجد جلسة نشطة. يرجى مسح رمز QR الخاص بالطاولة.",
	},
	"error.session_closed": {
		en: "This table session was closed by the restaurant.",
		ar: "أغلق المطعم جلسة هذه الطاولة.",
	},
	"error.empty_cart": {
		en: "Your cart is empty.",
		ar: "سلة الطلبات فارغة.",
	},
	"error.not_in_cart": {
		en: "Item is not in the cart.",
		ar: "العنصر غير موجود في السلة.",
	},
	"error.submit_in_progress": {
		en: "Your order is already being sent. Please wait.",
		ar: "جار إرسال طلبك بالفعل. يرجى الانتظار.",
	},
	"error.realtime_unavailable": {
		en: "Live updates are unavailable right now.",
		ar: "التحديثات المباشرة غير متاحة حاليا.",
	},
	"error.timeout": {
		en: "The kitchen did not confirm in time. Check your orders before trying again.",
		ar: "لم يؤكد المطبخ الطلب في الوقت المحدد. تحقق من طلباتك قبل المحاولة مرة أخرى.",
	},
	"error.not_signed_in": {
		en: "Not signed in.",
		ar: "لم يتم تسجيل الدخول.",
	},
	"error.internal": {
		en: "Something went wrong. Please try again.",
		ar: "حدث خطأ ما. يرجى المحاولة مرة أخرى.",
	},
}
