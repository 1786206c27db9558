package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/123jagadeesh/ProFlow/models"
)

func loaderFor(tasks map[primitive.ObjectID]*models.Task) func(primitive.ObjectID) (*models.Task, error) {
	return func(id primitive.ObjectID) (*models.Task, error) {
		task, ok := tasks[id]
		if !ok {
			return nil, fmt.Errorf("task %s not found", id.Hex())
		}
		return task, nil
	}
}

func TestAncestorChainContains(t *testing.T) {
	task := primitive.NewObjectID()
	parent := primitive.NewObjectID()
	grandparent := primitive.NewObjectID()
	root := primitive.NewObjectID()

	t.Run("parent is a direct child of the task", func(t *testing.T) {
		start := &models.Task{ID: parent, ParentTask: &task}
		got := ancestorChainContains(task, start, loaderFor(nil))
		assert.True(t, got)
	})

	t.Run("task appears two levels up", func(t *testing.T) {
		tasks := map[primitive.ObjectID]*models.Task{
			grandparent: {ID: grandparent, ParentTask: &task},
		}
		start := &models.Task{ID: parent, ParentTask: &grandparent}
		got := ancestorChainContains(task, start, loaderFor(tasks))
		assert.True(t, got)
	})

	t.Run("chain ends at a root without reaching the task", func(t *testing.T) {
		tasks := map[primitive.ObjectID]*models.Task{
			grandparent: {ID: grandparent, ParentTask: &root},
			root:        {ID: root},
		}
		start := &models.Task{ID: parent, ParentTask: &grandparent}
		got := ancestorChainContains(task, start, loaderFor(tasks))
		assert.False(t, got)
	})

	t.Run("dangling reference terminates the walk", func(t *testing.T) {
		missing := primitive.NewObjectID()
		start := &models.Task{ID: parent, ParentTask: &missing}
		got := ancestorChainContains(task, start, loaderFor(nil))
		assert.False(t, got)
	})

	t.Run("parent without ancestors", func(t *testing.T) {
		start := &models.Task{ID: parent}
		got := ancestorChainContains(task, start, loaderFor(nil))
		assert.False(t, got)
	})
}

func childrenOfFor(byParent map[primitive.ObjectID][]models.Task) func([]primitive.ObjectID) ([]models.Task, error) {
	return func(parents []primitive.ObjectID) ([]models.Task, error) {
		var children []models.Task
		for _, p := range parents {
			children = append(children, byParent[p]...)
		}
		return children, nil
	}
}

func TestGatherSubtree(t *testing.T) {
	root := primitive.NewObjectID()
	childA := primitive.NewObjectID()
	childB := primitive.NewObjectID()
	grandchild := primitive.NewObjectID()

	t.Run("leaf task collects only itself", func(t *testing.T) {
		ids, err := gatherSubtree(root, childrenOfFor(nil))
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{root}, ids)
	})

	t.Run("three-level tree collected breadth-first", func(t *testing.T) {
		byParent := map[primitive.ObjectID][]models.Task{
			root:   {{ID: childA, ParentTask: &root}, {ID: childB, ParentTask: &root}},
			childA: {{ID: grandchild, ParentTask: &childA}},
		}
		ids, err := gatherSubtree(root, childrenOfFor(byParent))
		require.NoError(t, err)
		assert.Equal(t, []primitive.ObjectID{root, childA, childB, grandchild}, ids)
	})

	t.Run("query error is propagated", func(t *testing.T) {
		_, err := gatherSubtree(root, func([]primitive.ObjectID) ([]models.Task, error) {
			return nil, fmt.Errorf("cursor failed")
		})
		assert.Error(t, err)
	})
}
