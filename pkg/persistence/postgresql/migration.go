package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Workflow definitions. One active workflow per mode, enforced by
			-- a partial unique index; prior versions are kept rather than
			-- overwritten.
			CREATE TABLE workflows (
				id UUID PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				mode VARCHAR(50) NOT NULL CHECK (mode IN ('fast', 'thorough', 'code')),
				active BOOLEAN NOT NULL DEFAULT false,
				version INT NOT NULL DEFAULT 1,
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE UNIQUE INDEX idx_workflows_one_active_per_mode
				ON workflows(mode) WHERE active AND deleted_at IS NULL;
			CREATE INDEX idx_workflows_mode ON workflows(mode);
			CREATE INDEX idx_workflows_created_at ON workflows(created_at);
			CREATE INDEX idx_workflows_deleted_at ON workflows(deleted_at);

			-- Pipeline stages. Position defines execution order and is unique
			-- per workflow.
			CREATE TABLE workflow_nodes (
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				kind VARCHAR(50) NOT NULL CHECK (kind IN ('input', 'router', 'retriever', 'generator', 'output')),
				name VARCHAR(255) NOT NULL,
				position INT NOT NULL,
				config JSONB DEFAULT '{}',
				enabled BOOLEAN NOT NULL DEFAULT true,
				PRIMARY KEY (workflow_id, id),
				UNIQUE (workflow_id, position)
			);

			-- Advisory edges for studio visualization.
			CREATE TABLE workflow_connections (
				workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				id VARCHAR(255) NOT NULL,
				source_node VARCHAR(255) NOT NULL,
				target_node VARCHAR(255) NOT NULL,
				PRIMARY KEY (workflow_id, id)
			);
		`,
		2: `
			-- Execution traces: one immutable row per engine invocation.
			-- Concurrent executions append independent rows.
			CREATE TABLE execution_traces (
				execution_id VARCHAR(255) PRIMARY KEY,
				workflow_id UUID NOT NULL,
				test_input TEXT NOT NULL,
				execution_path JSONB NOT NULL DEFAULT '[]',
				node_outputs JSONB NOT NULL DEFAULT '[]',
				final_output JSONB,
				processing_time DOUBLE PRECISION NOT NULL DEFAULT 0,
				status VARCHAR(50) NOT NULL CHECK (status IN ('success', 'partial', 'error')),
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_execution_traces_workflow_id ON execution_traces(workflow_id);
			CREATE INDEX idx_execution_traces_created_at ON execution_traces(created_at);
		`,
	}
}
