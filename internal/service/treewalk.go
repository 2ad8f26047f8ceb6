package service

import (
	"context"
	"fmt"

	"orgstructure/internal/models"
)

type childrenReader interface {
	GetWithChildren(ctx context.Context, id uint) (*models.Department, error)
}

// walkDescendants visits every descendant of rootID depth-first in child
// order. The walk stops early when visit returns false. Ids already seen are
// not visited twice, so a corrupted parent graph cannot loop forever.
func walkDescendants(ctx context.Context, reader childrenReader, rootID uint, visit func(models.Department) bool) error {
	seen := map[uint]bool{rootID: true}
	stack := []uint{rootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		department, err := reader.GetWithChildren(ctx, id)
		if err != nil {
			return fmt.Errorf("load department children: %w", err)
		}
		if department == nil {
			continue
		}

		// reverse push keeps child order on pop
		for i := len(department.Children) - 1; i >= 0; i-- {
			child := department.Children[i]
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			stack = append(stack, child.ID)
		}
		for _, child := range department.Children {
			if !visit(child) {
				return nil
			}
		}
	}
	return nil
}

// isDescendant reports whether candidateID lies in the subtree strictly
// below ancestorID.
func isDescendant(ctx context.Context, reader childrenReader, ancestorID, candidateID uint) (bool, error) {
	found := false
	err := walkDescendants(ctx, reader, ancestorID, func(department models.Department) bool {
		if department.ID == candidateID {
			found = true
		}
		return !found
	})
	return found, err
}

func equalUintPtr(a *uint, b *uint) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
