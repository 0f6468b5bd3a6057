package domain

// ResolveRecipients 計算收件人集合: members − {sender}
// 回傳新的 slice，不動到傳入的 member set
func ResolveRecipients(members []string, senderID string) []string {
	recipients := make([]string, 0, len(members))
	for _, m := range members {
		if m != senderID {
			recipients = append(recipients, m)
		}
	}
	return recipients
}
