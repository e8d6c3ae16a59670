package postgresql

// migrations returns the versioned schema statements applied at startup.
// Execution log columns deliberately avoid foreign keys: audit rows outlive
// deleted definitions.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflow_types (
				id UUID PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				display_name JSONB NOT NULL,
				description JSONB,
				icon TEXT NOT NULL DEFAULT '',
				color TEXT NOT NULL DEFAULT '',
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				is_default BOOLEAN NOT NULL DEFAULT FALSE,
				created_by TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE TABLE IF NOT EXISTS workflow_statuses (
				id UUID PRIMARY KEY,
				workflow_type_id UUID NOT NULL REFERENCES workflow_types(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				display_name JSONB NOT NULL,
				category TEXT NOT NULL,
				is_initial BOOLEAN NOT NULL DEFAULT FALSE,
				is_final BOOLEAN NOT NULL DEFAULT FALSE,
				sort_order INTEGER NOT NULL DEFAULT 0,
				sla_hours INTEGER,
				response_hours INTEGER,
				auto_assign BOOLEAN NOT NULL DEFAULT FALSE,
				notify_on_enter BOOLEAN NOT NULL DEFAULT FALSE,
				notify_on_exit BOOLEAN NOT NULL DEFAULT FALSE,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				UNIQUE (workflow_type_id, name)
			);

			CREATE UNIQUE INDEX IF NOT EXISTS workflow_statuses_single_initial
				ON workflow_statuses (workflow_type_id) WHERE is_initial;

			CREATE TABLE IF NOT EXISTS workflow_transitions (
				id UUID PRIMARY KEY,
				workflow_type_id UUID NOT NULL REFERENCES workflow_types(id) ON DELETE CASCADE,
				from_status_id UUID REFERENCES workflow_statuses(id) ON DELETE CASCADE,
				to_status_id UUID NOT NULL REFERENCES workflow_statuses(id) ON DELETE CASCADE,
				name TEXT NOT NULL,
				display_name JSONB NOT NULL,
				is_automatic BOOLEAN NOT NULL DEFAULT FALSE,
				requires_comment BOOLEAN NOT NULL DEFAULT FALSE,
				requires_assignment BOOLEAN NOT NULL DEFAULT FALSE,
				allowed_roles JSONB NOT NULL DEFAULT '[]',
				sort_order INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			);

			CREATE TABLE IF NOT EXISTS workflow_conditions (
				id UUID PRIMARY KEY,
				transition_id UUID NOT NULL REFERENCES workflow_transitions(id) ON DELETE CASCADE,
				condition_type TEXT NOT NULL,
				field_name TEXT NOT NULL DEFAULT '',
				operator TEXT NOT NULL DEFAULT '',
				expected_value TEXT NOT NULL DEFAULT '',
				condition_group INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS workflow_actions (
				id UUID PRIMARY KEY,
				transition_id UUID NOT NULL REFERENCES workflow_transitions(id) ON DELETE CASCADE,
				action_type TEXT NOT NULL,
				config JSONB NOT NULL DEFAULT '{}',
				execution_order INTEGER NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE
			);

			CREATE TABLE IF NOT EXISTS workflow_versions (
				id UUID PRIMARY KEY,
				workflow_type_id UUID NOT NULL REFERENCES workflow_types(id) ON DELETE CASCADE,
				version INTEGER NOT NULL,
				configuration JSONB NOT NULL,
				created_by TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (workflow_type_id, version)
			);

			CREATE TABLE IF NOT EXISTS tickets (
				id UUID PRIMARY KEY,
				subject TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				priority INTEGER NOT NULL DEFAULT 0,
				workflow_type_id UUID NOT NULL,
				current_status_id UUID NOT NULL,
				assigned_to_id TEXT,
				created_by TEXT NOT NULL DEFAULT '',
				sla_due_at TIMESTAMP WITH TIME ZONE,
				sla_breached BOOLEAN NOT NULL DEFAULT FALSE,
				fields JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE TABLE IF NOT EXISTS users (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT '',
				telegram_chat_id BIGINT NOT NULL DEFAULT 0,
				is_active BOOLEAN NOT NULL DEFAULT TRUE,
				last_login_at TIMESTAMP WITH TIME ZONE
			);

			CREATE TABLE IF NOT EXISTS ticket_comments (
				id UUID PRIMARY KEY,
				ticket_id TEXT NOT NULL,
				user_id TEXT NOT NULL DEFAULT '',
				content TEXT NOT NULL,
				is_internal BOOLEAN NOT NULL DEFAULT FALSE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX IF NOT EXISTS ticket_comments_ticket_idx
				ON ticket_comments (ticket_id);

			CREATE TABLE IF NOT EXISTS workflow_execution_logs (
				id UUID PRIMARY KEY,
				ticket_id TEXT NOT NULL,
				workflow_type_id TEXT NOT NULL DEFAULT '',
				from_status_id TEXT,
				to_status_id TEXT,
				transition_id TEXT,
				user_id TEXT,
				executed_at TIMESTAMP WITH TIME ZONE NOT NULL,
				duration_ms BIGINT NOT NULL DEFAULT 0,
				condition_results JSONB NOT NULL DEFAULT '{}',
				action_results JSONB NOT NULL DEFAULT '{}',
				error_message TEXT,
				metadata JSONB NOT NULL DEFAULT '{}'
			);

			CREATE INDEX IF NOT EXISTS workflow_execution_logs_ticket_idx
				ON workflow_execution_logs (ticket_id, executed_at DESC);

			CREATE INDEX IF NOT EXISTS workflow_execution_logs_type_idx
				ON workflow_execution_logs (workflow_type_id, executed_at);
		`,
	}
}
