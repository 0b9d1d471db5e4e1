package idutil

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, err
	}

	return &Generator{node: node}, nil
}

// Next returns an id which increases with time on this node.
func (g *Generator) Next() int64 {
	return g.node.Generate().Int64()
}

// TimeOf returns the time the id was generated at.
func TimeOf(id int64) time.Time {
	return time.UnixMilli(snowflake.ParseInt64(id).Time())
}

func NewRequestID() string {
	return uuid.NewString()
}
