package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
)

type fakeCallerUsers struct {
	users map[string]*models.User
	err   error
}

func (f *fakeCallerUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

type fakeCallerTeachers struct {
	teachers map[string]*models.Teacher
	err      error
}

func (f *fakeCallerTeachers) FindByUserID(_ context.Context, userID string) (*models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	if teacher, ok := f.teachers[userID]; ok {
		return teacher, nil
	}
	return nil, sql.ErrNoRows
}

type fakeCallerParents struct {
	parents map[string]*models.Parent
}

func (f *fakeCallerParents) FindByUserID(_ context.Context, userID string) (*models.Parent, error) {
	if parent, ok := f.parents[userID]; ok {
		return parent, nil
	}
	return nil, sql.ErrNoRows
}

type fakeCallerClasses struct {
	refs map[string][]models.ClassRef
	err  error
}

func (f *fakeCallerClasses) ListRefsByTeacher(_ context.Context, teacherID string) ([]models.ClassRef, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.refs[teacherID], nil
}

func TestCallerServiceResolveTeacher(t *testing.T) {
	users := &fakeCallerUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", SchoolID: "school-1", Role: models.RoleTeacher},
	}}
	teachers := &fakeCallerTeachers{teachers: map[string]*models.Teacher{
		"user-1": {ID: "t-1", UserID: "user-1", SchoolID: "school-1"},
	}}
	classes := &fakeCallerClasses{refs: map[string][]models.ClassRef{
		"t-1": {{ID: "class-1", Name: "Grade 1A"}, {ID: "class-2", Name: "Grade 1B"}},
	}}
	svc := NewCallerService(users, teachers, &fakeCallerParents{}, classes, nil)

	cc, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, cc.Caller.Role)
	require.NotNil(t, cc.Caller.TeacherID)
	assert.Equal(t, "t-1", *cc.Caller.TeacherID)
	assert.Len(t, cc.Classes, 2)
	assert.True(t, cc.Caller.IsTeacher())
}

func TestCallerServiceResolveUnknownUser(t *testing.T) {
	svc := NewCallerService(&fakeCallerUsers{}, &fakeCallerTeachers{}, &fakeCallerParents{}, &fakeCallerClasses{}, nil)

	cc, err := svc.Resolve(context.Background(), "ghost")
	require.NoError(t, err, "missing session degrades instead of failing")
	assert.Equal(t, models.RoleUnknown, cc.Caller.Role)
	assert.Empty(t, cc.Classes)
}

func TestCallerServiceResolveTeacherWithoutProfile(t *testing.T) {
	users := &fakeCallerUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", SchoolID: "school-1", Role: models.RoleTeacher},
	}}
	svc := NewCallerService(users, &fakeCallerTeachers{}, &fakeCallerParents{}, &fakeCallerClasses{}, nil)

	cc, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, cc.Caller.Role)
	assert.Nil(t, cc.Caller.TeacherID)
	assert.Empty(t, cc.Classes)
	assert.False(t, cc.Caller.IsTeacher(), "read-only view without a teacher row")
}

func TestCallerServiceResolveClassListFailureDegrades(t *testing.T) {
	users := &fakeCallerUsers{users: map[string]*models.User{
		"user-1": {ID: "user-1", SchoolID: "school-1", Role: models.RoleTeacher},
	}}
	teachers := &fakeCallerTeachers{teachers: map[string]*models.Teacher{
		"user-1": {ID: "t-1", UserID: "user-1", SchoolID: "school-1"},
	}}
	classes := &fakeCallerClasses{err: errors.New("db down")}
	svc := NewCallerService(users, teachers, &fakeCallerParents{}, classes, nil)

	cc, err := svc.Resolve(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, cc.Classes)
	require.NotNil(t, cc.Caller.TeacherID)
}

func TestCallerServiceResolveParent(t *testing.T) {
	users := &fakeCallerUsers{users: map[string]*models.User{
		"user-2": {ID: "user-2", SchoolID: "school-1", Role: models.RoleParent},
	}}
	parents := &fakeCallerParents{parents: map[string]*models.Parent{
		"user-2": {ID: "p-1", UserID: "user-2", SchoolID: "school-1"},
	}}
	svc := NewCallerService(users, &fakeCallerTeachers{}, parents, &fakeCallerClasses{}, nil)

	cc, err := svc.Resolve(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.RoleParent, cc.Caller.Role)
	require.NotNil(t, cc.Caller.ParentID)
	assert.Equal(t, "p-1", *cc.Caller.ParentID)
}
