package chat

// Deliver accounts for a message appended to the transcript: bot messages
// arriving while the panel is closed are unread.
func (p *Panel) Deliver(sender Sender) {
	if sender == SenderBot && !p.IsOpen {
		p.UnreadCount++
	}
}

// Open shows the panel and marks everything as read.
func (p *Panel) Open() {
	p.IsOpen = true
	p.IsMinimized = false
	p.UnreadCount = 0
}

// Close hides the panel.
func (p *Panel) Close() {
	p.IsOpen = false
	p.IsMinimized = false
}

// Minimize collapses an open panel. A closed panel stays closed.
func (p *Panel) Minimize() {
	if p.IsOpen {
		p.IsMinimized = true
	}
}
