package idgen

import (
	"fmt"
	"hash/fnv"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

// nodeSpace is the size of the snowflake node identifier space (10 bits).
const nodeSpace = 1024

// Config contains generator configuration loaded from the environment.
type Config struct {
	// InstanceSalt distinguishes this process from other gateway instances
	// sharing the same catalog. Left empty, a random salt is generated at
	// startup, which is safe but makes node identifiers non-deterministic
	// across restarts.
	InstanceSalt string `env:"IDGEN_INSTANCE_SALT"`
}

// Generator issues unique, time-ordered identifiers for one process instance.
// The zero value is not usable; construct with New.
type Generator struct {
	node *snowflake.Node
	salt string
}

// New creates a Generator whose node identifier is derived from the instance
// salt. An empty salt is replaced with a random UUID.
func New(cfg Config) (*Generator, error) {
	salt := cfg.InstanceSalt
	if salt == "" {
		salt = uuid.NewString()
	}

	node, err := snowflake.NewNode(nodeID(salt))
	if err != nil {
		return nil, fmt.Errorf("idgen: failed to create snowflake node: %w", err)
	}

	return &Generator{node: node, salt: salt}, nil
}

// Next reserves and returns the next identifier. Identifiers issued by a single
// Generator are strictly increasing. Safe for concurrent use.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// NodeID reports the node identifier derived from the instance salt. It does
// not consume an identifier.
func (g *Generator) NodeID() int64 {
	return nodeID(g.salt)
}

// nodeID maps an arbitrary salt string onto the snowflake node space.
func nodeID(salt string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(salt))
	return int64(h.Sum32() % nodeSpace)
}
