package conversation

import (
	"fmt"
	"strings"

	"github.com/foreveruup/wp-bot/internal/leads"
)

// Canned outbound texts. These are sent verbatim, so edits here change
// what users see in WhatsApp.
const (
	greetingReply = "Привет! Я помогу с ботами и автоматизацией. Расскажу, что умею, или сразу запишу на бесплатную консультацию. Что удобнее? 🙂"

	consultationFormReply = "Отлично! Запишу вас на бесплатную консультацию. Заполните, пожалуйста, кратко:\n" +
		"Имя: \nКомпания: \nТелефон: \nЗадача (что автоматизировать): "

	llmFailureReply = "Простите, произошёл технический сбой. Попробуйте ещё раз через минуту 🙏"

	accessDeniedReply = "У вас нет доступа к этой команде"

	historyClearedReply = "✅ История чата очищена"

	noRecordsReply = "📭 Записей пока нет"
)

// missingFieldsReply asks for the intake fields still absent from a
// partially filled form.
func missingFieldsReply(missing []string) string {
	return "Почти всё! Не хватает: " + strings.Join(missing, ", ") + ".\n" +
		"Пришлите одним сообщением в формате:\n" +
		"Имя: ...\nКомпания: ...\nТелефон: ...\nЗадача: ..."
}

// leadConfirmationReply confirms a saved consultation request back to the user.
func leadConfirmationReply(lead *leads.Lead) string {
	return "✅ Записал вас на бесплатную консультацию!\n\n" +
		fmt.Sprintf("👤 Имя: %s\n", lead.Name) +
		fmt.Sprintf("🏢 Компания: %s\n", lead.Company) +
		fmt.Sprintf("📱 Телефон: %s\n", lead.Phone) +
		fmt.Sprintf("🧩 Задача: %s\n\n", lead.Task) +
		"Свяжемся в ближайшее время. Предпочтительнее звонок или WhatsApp? 🙂"
}

// leadListingReply renders the most recent saved records for the admin
// listing command.
func leadListingReply(records []*leads.Lead) string {
	if len(records) == 0 {
		return noRecordsReply
	}

	lines := []string{"📋 Последние записи:\n"}
	for _, record := range records {
		lines = append(lines,
			fmt.Sprintf("📱 %s\n", record.Sender)+
				fmt.Sprintf("👤 %s\n", textOrPlaceholder(record.Name))+
				fmt.Sprintf("🏢 %s\n", textOrPlaceholder(record.Company))+
				fmt.Sprintf("🤖 %s\n", textOrPlaceholder(record.Task))+
				fmt.Sprintf("📅 %s\n", record.RecordedAt.Format("2006-01-02")),
		)
	}
	return strings.Join(lines, "\n")
}

func textOrPlaceholder(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Не указано"
	}
	return value
}
