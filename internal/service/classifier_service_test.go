package service

import (
	"context"
	"errors"
	"testing"

	"ai-mailroom-be/internal/dto"
	"ai-mailroom-be/internal/entity"
	"ai-mailroom-be/internal/repository/contract"
	"ai-mailroom-be/internal/repository/memory"
	"ai-mailroom-be/internal/repository/specification"
	"ai-mailroom-be/internal/repository/unitofwork"
	"ai-mailroom-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	reply string
	err   error
	calls int
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.reply, s.err
}

type stubClassificationRepo struct {
	contract.EmailClassificationRepository
	saved []*entity.EmailClassification
}

func (r *stubClassificationRepo) Upsert(ctx context.Context, c *entity.EmailClassification) error {
	r.saved = append(r.saved, c)
	return nil
}

func (r *stubClassificationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.EmailClassification, error) {
	return r.saved, nil
}

type classifierUnitOfWork struct {
	stubUnitOfWork
	classifications *stubClassificationRepo
}

func (u *classifierUnitOfWork) EmailClassificationRepository() contract.EmailClassificationRepository {
	return u.classifications
}

func newClassifierFixture(model *stubLLM) (IClassifierService, *stubClassificationRepo) {
	repo := &stubClassificationRepo{}
	factory := &classifierFactory{uow: &classifierUnitOfWork{classifications: repo}}
	svc := NewClassifierService(model, memory.NewClassificationCache(), factory, newTestLogger())
	return svc, repo
}

type classifierFactory struct {
	uow *classifierUnitOfWork
}

func (f *classifierFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork { return f.uow }

func TestClassifyOrderRequest(t *testing.T) {
	svc, repo := newClassifierFixture(&stubLLM{reply: "order request"})

	category, err := svc.Classify(context.Background(), &entity.Email{
		Id:      "E001",
		Subject: "Need boots",
		Message: "Please send 3 units of LTH-0978",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryOrderRequest, category)

	require.Len(t, repo.saved, 1)
	assert.Equal(t, "E001", repo.saved[0].EmailId)
}

func TestClassifyProductInquiry(t *testing.T) {
	svc, _ := newClassifierFixture(&stubLLM{reply: "product inquiry"})

	category, err := svc.Classify(context.Background(), &entity.Email{
		Id:      "E002",
		Subject: "Question",
		Message: "What material are the winter jackets made of?",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryProductInquiry, category)
}

func TestClassifyCoercesNoisyOrderReply(t *testing.T) {
	// Models pad their answers; anything containing "order" still counts.
	svc, _ := newClassifierFixture(&stubLLM{reply: `The category is: "Order Request".`})

	category, err := svc.Classify(context.Background(), &entity.Email{
		Id:      "E003",
		Message: "2x SKU-100 please",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryOrderRequest, category)
}

func TestClassifyDefaultsToInquiry(t *testing.T) {
	svc, _ := newClassifierFixture(&stubLLM{reply: "no idea, sorry"})

	category, err := svc.Classify(context.Background(), &entity.Email{
		Id:      "E004",
		Message: "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryProductInquiry, category)
}

func TestClassifyDuplicateContentHitsCache(t *testing.T) {
	model := &stubLLM{reply: "order request"}
	svc, _ := newClassifierFixture(model)

	email := &entity.Email{Id: "E005", Subject: "Re: order", Message: "send 1x P1"}
	_, err := svc.Classify(context.Background(), email)
	require.NoError(t, err)

	// Same content under a different id must not cost a second model call.
	resent := &entity.Email{Id: "E006", Subject: "Re: order", Message: "send 1x P1"}
	category, err := svc.Classify(context.Background(), resent)
	require.NoError(t, err)

	assert.Equal(t, entity.CategoryOrderRequest, category)
	assert.Equal(t, 1, model.calls)
}

func TestClassifyModelFailure(t *testing.T) {
	svc, _ := newClassifierFixture(&stubLLM{err: errors.New("model offline")})

	category, err := svc.Classify(context.Background(), &entity.Email{Id: "E007", Message: "x"})
	assert.Error(t, err)
	assert.Equal(t, entity.CategoryUnclassified, category)
}

func TestClassifyBatchIsolatesFailures(t *testing.T) {
	// The stub fails every call; each email still gets its own response.
	svc, _ := newClassifierFixture(&stubLLM{err: errors.New("model offline")})

	responses, err := svc.ClassifyBatch(context.Background(), &dto.ClassifyBatchRequest{
		Emails: []dto.EmailRequest{
			{Id: "E1", Message: "a"},
			{Id: "E2", Message: "b"},
		},
	})
	require.NoError(t, err)
	require.Len(t, responses, 2)

	for _, resp := range responses {
		assert.Equal(t, string(entity.CategoryUnclassified), resp.Category)
		assert.NotEmpty(t, resp.Error)
	}
}
