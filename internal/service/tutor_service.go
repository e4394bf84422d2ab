package service

import (
	"aru_academy_backend/internal/model"
	"aru_academy_backend/internal/repository"
	"aru_academy_backend/internal/util"
	"aru_academy_backend/pkg/logger"
	"aru_academy_backend/pkg/monitoring"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// TutorService AI助教：问答、出题、简答题评估
// 外部模型不可用时降级到内置回复，降级视为调用成功
type TutorService struct {
	Provider     *HuggingFaceProvider
	ResourceRepo *repository.ResourceRepository
	CourseRepo   *repository.CourseRepository
	QuizRepo     *repository.QuizRepository
	AiLogRepo    *repository.AiLogRepository
	APIToken     string
	APIURL       string
}

func NewTutorService(
	provider *HuggingFaceProvider,
	resourceRepo *repository.ResourceRepository,
	courseRepo *repository.CourseRepository,
	quizRepo *repository.QuizRepository,
	aiLogRepo *repository.AiLogRepository,
	apiToken, apiURL string,
) *TutorService {
	return &TutorService{
		Provider:     provider,
		ResourceRepo: resourceRepo,
		CourseRepo:   courseRepo,
		QuizRepo:     quizRepo,
		AiLogRepo:    aiLogRepo,
		APIToken:     apiToken,
		APIURL:       apiURL,
	}
}

const (
	askContextLimit  = 1000
	quizContextLimit = 1500
)

type AskRequest struct {
	Question   string `json:"question" binding:"required"`
	ResourceID uint   `json:"resourceId"`
}

type AskResponse struct {
	Answer         string  `json:"answer"`
	ProcessingTime float64 `json:"processingTime"`
}

func (s *TutorService) Ask(ctx context.Context, userID uint, req *AskRequest) (*AskResponse, error) {
	contextText := s.resourceContext(req.ResourceID, askContextLimit)

	var answer string
	var processingTime float64
	success := true

	if s.APIToken == "" {
		answer = FallbackResponse(req.Question, contextText)
		processingTime = 0.1
	} else {
		aiAnswer, elapsed, err := s.Provider.AskQuestion(ctx, req.Question, contextText)
		if err != nil {
			logger.Log.Warn("AI ask failed, using fallback response", zap.Error(err))
			answer = FallbackResponse(req.Question, contextText)
			processingTime = 0.1
		} else {
			answer = aiAnswer
			processingTime = elapsed
		}
	}

	monitoring.AICallCounter.WithLabelValues("ask", "success").Inc()
	monitoring.AICallDuration.WithLabelValues("ask").Observe(processingTime)

	s.logCall(userID, "ask",
		map[string]interface{}{"question": req.Question, "resource_id": req.ResourceID},
		map[string]interface{}{"answer": answer, "success": success},
		success, "", processingTime)

	return &AskResponse{Answer: answer, ProcessingTime: processingTime}, nil
}

// GeneratedQuestion AI生成或模板生成的题目，选择题的Answer为正确选项原文
type GeneratedQuestion struct {
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

type GenerateQuestionsRequest struct {
	Topic        string `json:"topic" binding:"required"`
	ResourceID   uint   `json:"resourceId"`
	CourseID     uint   `json:"courseId"`
	NumQuestions int    `json:"numQuestions"`
}

type GenerateQuestionsResponse struct {
	Questions      []GeneratedQuestion `json:"questions"`
	Topic          string              `json:"topic"`
	ProcessingTime float64             `json:"processingTime"`
}

func (s *TutorService) GenerateQuestions(ctx context.Context, userID uint, req *GenerateQuestionsRequest) (*GenerateQuestionsResponse, error) {
	numQuestions := req.NumQuestions
	if numQuestions < 1 || numQuestions > 10 {
		numQuestions = 5
	}

	contextText := s.resourceContext(req.ResourceID, quizContextLimit)

	var questions []GeneratedQuestion
	processingTime := 0.1

	if s.APIToken != "" {
		text, elapsed, err := s.Provider.GenerateQuizText(ctx, req.Topic, contextText, numQuestions)
		if err == nil {
			if parsed, ok := ExtractQuestionsJSON(text); ok {
				questions = parsed
				processingTime = elapsed
			}
		} else {
			logger.Log.Warn("AI quiz generation failed, using template questions", zap.Error(err))
		}
	}

	if len(questions) == 0 {
		questions = FallbackQuizQuestions(req.Topic, numQuestions)
	}

	monitoring.AICallCounter.WithLabelValues("generate-questions", "success").Inc()
	monitoring.AICallDuration.WithLabelValues("generate-questions").Observe(processingTime)

	s.logCall(userID, "generate-questions",
		map[string]interface{}{
			"topic":         req.Topic,
			"resource_id":   req.ResourceID,
			"course_id":     req.CourseID,
			"num_questions": numQuestions,
		},
		map[string]interface{}{"questions_count": len(questions), "success": true},
		true, "", processingTime)

	return &GenerateQuestionsResponse{
		Questions:      questions,
		Topic:          req.Topic,
		ProcessingTime: processingTime,
	}, nil
}

type CreateQuizRequest struct {
	Title       string              `json:"title" binding:"required"`
	Topic       string              `json:"topic" binding:"required"`
	CourseID    uint                `json:"courseId" binding:"required"`
	Description string              `json:"description"`
	Questions   []GeneratedQuestion `json:"questions" binding:"required"`
}

// CreateQuizFromAI 将生成的题目落库成正式测验，仅限课程负责人和管理员
func (s *TutorService) CreateQuizFromAI(user *model.User, req *CreateQuizRequest) (*model.Quiz, error) {
	if user.Role != model.Instructor && user.Role != model.Admin {
		return nil, util.AccessDeniedError("only instructors can create quizzes")
	}

	course, err := s.CourseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, util.ErrCourseNotFound
	}
	if user.Role == model.Instructor && course.CreatedBy != user.ID {
		return nil, util.AccessDeniedError("access denied to this course")
	}

	quiz := &model.Quiz{
		Title:       req.Title,
		CourseID:    req.CourseID,
		Topic:       req.Topic,
		Description: req.Description,
	}

	for i, q := range req.Questions {
		var options json.RawMessage
		if len(q.Options) > 0 {
			options, _ = json.Marshal(q.Options)
		}
		quiz.Questions = append(quiz.Questions, model.QuizQuestion{
			QuestionType: model.QuestionType(q.Type),
			Question:     q.Question,
			Options:      options,
			Answer:       q.Answer,
			Explanation:  q.Explanation,
			Points:       1,
			Order:        i,
		})
	}

	if err := s.QuizRepo.Create(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

type EvaluateAnswerRequest struct {
	Question      string `json:"question" binding:"required"`
	StudentAnswer string `json:"studentAnswer" binding:"required"`
	CorrectAnswer string `json:"correctAnswer" binding:"required"`
}

type AnswerEvaluation struct {
	IsCorrect   bool   `json:"isCorrect"`
	Score       int    `json:"score"`
	Feedback    string `json:"feedback"`
	Suggestions string `json:"suggestions"`
}

type EvaluateAnswerResponse struct {
	Evaluation     *AnswerEvaluation `json:"evaluation"`
	ProcessingTime float64           `json:"processingTime"`
	Method         string            `json:"method"`
}

// EvaluateAnswer 评估简答题，AI返回不可解析时退回关键词启发式
func (s *TutorService) EvaluateAnswer(ctx context.Context, userID uint, req *EvaluateAnswerRequest) (*EvaluateAnswerResponse, error) {
	if s.APIToken != "" {
		prompt := fmt.Sprintf(`You are an educational AI assistant. Please evaluate a student's answer to a question.

Question: %s
Correct Answer: %s
Student Answer: %s

Please evaluate the student's answer and respond with a JSON object containing:
1. "is_correct": true/false (true if the student's answer demonstrates understanding of the concept, even if worded differently)
2. "score": 0-100 (percentage score)
3. "feedback": A brief explanation of why the answer is correct/incorrect
4. "suggestions": Any suggestions for improvement (if applicable)

Consider that students may express the same concept in different words or sentences. Focus on understanding rather than exact wording.`,
			req.Question, req.CorrectAnswer, req.StudentAnswer)

		aiResponse, elapsed, err := s.Provider.AskQuestion(ctx, prompt, "")
		if err == nil {
			var raw struct {
				IsCorrect   bool   `json:"is_correct"`
				Score       int    `json:"score"`
				Feedback    string `json:"feedback"`
				Suggestions string `json:"suggestions"`
			}
			if jsonErr := json.Unmarshal(extractJSONObject(aiResponse), &raw); jsonErr == nil {
				eval := &AnswerEvaluation{
					IsCorrect:   raw.IsCorrect,
					Score:       raw.Score,
					Feedback:    raw.Feedback,
					Suggestions: raw.Suggestions,
				}
				s.logCall(userID, "evaluate-answer",
					map[string]interface{}{"question": req.Question},
					map[string]interface{}{"score": eval.Score, "success": true},
					true, "", elapsed)
				return &EvaluateAnswerResponse{Evaluation: eval, ProcessingTime: elapsed, Method: "ai"}, nil
			}
		} else {
			logger.Log.Warn("AI evaluation failed, using keyword heuristic", zap.Error(err))
		}
	}

	eval := EvaluateAnswerFallback(req.StudentAnswer, req.CorrectAnswer)

	s.logCall(userID, "evaluate-answer",
		map[string]interface{}{"question": req.Question},
		map[string]interface{}{"score": eval.Score, "success": true},
		true, "", 0.1)

	return &EvaluateAnswerResponse{Evaluation: eval, ProcessingTime: 0.1, Method: "fallback"}, nil
}

type StatusResponse struct {
	Status            string `json:"status"`
	Reason            string `json:"reason,omitempty"`
	Service           string `json:"service"`
	Model             string `json:"model"`
	FallbackAvailable bool   `json:"fallbackAvailable"`
	Message           string `json:"message"`
}

// Status 对外暴露AI服务可用性，降级场景也算运行中
func (s *TutorService) Status(ctx context.Context) *StatusResponse {
	modelName := s.APIURL
	if idx := strings.LastIndex(modelName, "/"); idx >= 0 {
		modelName = modelName[idx+1:]
	}

	resp := &StatusResponse{
		Service:           "Hugging Face Inference API",
		Model:             modelName,
		FallbackAvailable: true,
	}

	if s.APIToken == "" {
		resp.Status = "fallback"
		resp.Reason = "API token not configured - using fallback responses"
		resp.Message = "AI service is running with helpful fallback responses"
		return resp
	}

	if s.Provider.IsAvailable(ctx) {
		resp.Status = "available"
		resp.Message = "AI service is fully operational"
	} else {
		resp.Status = "fallback"
		resp.Reason = "external AI service unreachable"
		resp.Message = "AI service is running with helpful fallback responses"
	}
	return resp
}

func (s *TutorService) resourceContext(resourceID uint, limit int) string {
	if resourceID == 0 {
		return ""
	}
	resource, err := s.ResourceRepo.FindByID(resourceID)
	if err != nil || resource.TextContent == "" {
		return ""
	}
	text := resource.TextContent
	if len(text) > limit {
		text = text[:limit]
	}
	return text
}

func (s *TutorService) logCall(userID uint, endpoint string, reqData, respData map[string]interface{}, success bool, errMsg string, processingTime float64) {
	reqJSON, _ := json.Marshal(reqData)
	respJSON, _ := json.Marshal(respData)

	entry := &model.AiCallLog{
		UserID:         userID,
		Endpoint:       endpoint,
		RequestData:    reqJSON,
		ResponseData:   respJSON,
		Success:        success,
		ErrorMessage:   errMsg,
		ProcessingTime: processingTime,
	}
	if err := s.AiLogRepo.Create(entry); err != nil {
		logger.Log.Error("Failed to record AI call log", zap.Error(err))
	}
}

// FallbackResponse AI不可用时按问题关键词返回学习建议
func FallbackResponse(question, contextText string) string {
	q := strings.ToLower(question)

	if contextText != "" {
		return "I'd be happy to help with your question! While I'm currently experiencing some technical difficulties, I can see you're working with course material. Here's how to get the help you need:\n\n" +
			"From Your Course Material:\n- Review the relevant sections in your textbook or course notes\n- Look for examples and practice problems related to your question\n- Check if there are study guides or summaries available\n\n" +
			"Specific to Your Question:\n- Break down your question into smaller parts\n- Look for key terms and concepts in your course materials\n- Try to find similar examples or case studies\n\n" +
			"Get Additional Help:\n- Ask your instructor during office hours\n- Join study groups with classmates\n- Use online resources like Khan Academy or educational YouTube channels\n\n" +
			"Study Tip: Try rephrasing your question or explaining what you already know about the topic. This often helps clarify what specific help you need!\n\n" +
			"I'll be back online soon to provide more personalized assistance!"
	}

	switch {
	case containsAny(q, "explain", "what is", "define", "meaning"):
		return "I'd be happy to explain that concept! While I'm currently experiencing some technical difficulties, here are some excellent ways to get the explanation you need:\n\n" +
			"Study Resources:\n- Check your course materials and textbooks\n- Look for online tutorials and educational videos\n- Review lecture notes and presentations\n\n" +
			"Get Help:\n- Ask your instructor or classmates for clarification\n- Use the course discussion forums\n- Join study groups\n\n" +
			"Online Resources:\n- Khan Academy, Coursera, or edX\n- YouTube educational channels\n- Academic websites and journals\n\n" +
			"Study Tip: Try to break down complex concepts into smaller parts and look for real-world examples!\n\n" +
			"I'll be back online soon to provide more detailed explanations!"

	case containsAny(q, "example", "examples", "show me"):
		return "Great question! Here are some effective ways to find examples:\n\n" +
			"Course Materials:\n- Review your course materials for sample problems\n- Check the practice exercises in your textbook\n- Look at past assignments and their solutions\n\n" +
			"Ask Your Instructor:\n- Request additional examples during office hours\n- Ask for clarification on complex topics\n- Request practice problems\n\n" +
			"Online Resources:\n- Search for examples on educational websites\n- Look for similar problems on forums\n- Check solution manuals (if available)\n\n" +
			"I'm working on getting back online to provide specific examples!"

	case containsAny(q, "how to", "how do", "steps", "process"):
		return "I can help you with that process! Here's a systematic approach:\n\n" +
			"Step-by-Step Method:\n1. Break down the problem into smaller, manageable steps\n2. Review the relevant concepts and formulas\n3. Work through each step systematically\n4. Check your work at each stage\n5. Practice with similar problems\n\n" +
			"Pro Tips:\n- Start with simpler versions of the problem\n- Use diagrams or visual aids when helpful\n- Don't rush, take your time with each step\n- Ask for help if you get stuck on any step\n\n" +
			"Additional Resources:\n- Check your course materials for detailed procedures\n- Ask your instructor for step-by-step guidance\n- Look for video tutorials online\n\n" +
			"I'll be back online soon to provide detailed step-by-step solutions!"

	case containsAny(q, "help", "stuck", "confused", "difficult"):
		return "I understand you're feeling stuck! Don't worry, this is a normal part of learning. Here are some strategies that can help:\n\n" +
			"Learning Strategies:\n- Take a break and come back with fresh eyes\n- Review the fundamental concepts first\n- Try working through a simpler version of the problem\n- Practice with easier problems to build confidence\n\n" +
			"Get Support:\n- Ask for help from your instructor or study group\n- Use online resources and tutorials\n- Join study groups or peer tutoring\n- Visit your school's learning center\n\n" +
			"Stay Motivated:\n- Remember that struggling is part of learning\n- Celebrate small victories and progress\n- Don't be afraid to ask questions\n- Keep a positive mindset\n\n" +
			"I'm here to support your learning journey and will be back online soon!"

	case containsAny(q, "math", "mathematics", "calculate", "formula"):
		return "Math questions are great! While I'm temporarily offline, here are some excellent resources for mathematical help:\n\n" +
			"Math Resources:\n- Wolfram Alpha for calculations and step-by-step solutions\n- Khan Academy for video explanations\n- Mathway for problem-solving\n- Your textbook's examples and practice problems\n\n" +
			"Study Tips:\n- Practice regularly with similar problems\n- Understand the underlying concepts, not just procedures\n- Use visual aids and diagrams when helpful\n- Work through problems step by step\n\n" +
			"Get Help:\n- Ask your math instructor for clarification\n- Join a math study group\n- Use online math forums and communities\n\n" +
			"I'll be back online soon to help with your math questions!"

	default:
		return "That's an interesting question! While I'm currently experiencing some technical difficulties, here are some excellent ways to get the help you need:\n\n" +
			"Academic Resources:\n- Check your course materials and resources\n- Review your notes and textbook\n- Use your school's library and online databases\n\n" +
			"Human Support:\n- Ask your instructor or teaching assistant\n- Collaborate with classmates in study groups\n- Visit your school's learning center or tutoring services\n\n" +
			"Online Learning:\n- Use educational websites and platforms\n- Search for relevant tutorials and guides\n- Join online study communities\n\n" +
			"Study Strategies:\n- Break complex topics into smaller parts\n- Use active learning techniques\n- Practice regularly and consistently\n\n" +
			"I'm working on getting back online to provide more personalized assistance. Thank you for your patience!"
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

type questionTemplate struct {
	question     string
	questionType model.QuestionType
	options      []string
	answerIndex  int
	answer       string
	explanation  string
}

func quizTemplates(topic string) []questionTemplate {
	return []questionTemplate{
		{
			question:     fmt.Sprintf("What is the primary purpose of %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				fmt.Sprintf("To provide a comprehensive understanding of %s", topic),
				fmt.Sprintf("To solve complex problems in %s", topic),
				fmt.Sprintf("To establish fundamental principles in %s", topic),
				fmt.Sprintf("To advance research in %s", topic),
			},
			answerIndex: 0,
			explanation: fmt.Sprintf("This question tests your understanding of the fundamental purpose and goals of %s.", topic),
		},
		{
			question:     fmt.Sprintf("Explain the main concept behind %s in your own words.", topic),
			questionType: model.ShortAnswer,
			answer:       fmt.Sprintf("The main concept of %s involves understanding its fundamental principles, practical applications, and how it relates to solving real-world problems. It encompasses both theoretical knowledge and practical skills needed to work effectively with %s.", topic, topic),
			explanation:  fmt.Sprintf("This question evaluates your ability to explain %s concepts clearly and demonstrate understanding beyond memorization.", topic),
		},
		{
			question:     fmt.Sprintf("Which of the following is a key characteristic of %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				fmt.Sprintf("Systematic approach to %s", topic),
				fmt.Sprintf("Practical application of %s", topic),
				fmt.Sprintf("Theoretical foundation of %s", topic),
				"All of the above",
			},
			answerIndex: 3,
			explanation: fmt.Sprintf("This question evaluates your knowledge of the essential characteristics that define %s.", topic),
		},
		{
			question:     fmt.Sprintf("Describe how %s is used in real-world applications. Provide specific examples.", topic),
			questionType: model.ShortAnswer,
			answer:       fmt.Sprintf("%s is widely used in various industries and applications. For example, it can be applied in business for problem-solving and decision-making, in technology for system design and optimization, in education for curriculum development, and in research for data analysis and innovation. The practical applications demonstrate its versatility and importance in modern society.", topic),
			explanation:  fmt.Sprintf("This question tests your ability to connect theoretical knowledge of %s with practical, real-world applications and provide concrete examples.", topic),
		},
		{
			question:     fmt.Sprintf("What are the main benefits of studying %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				"Improved problem-solving skills",
				"Enhanced analytical thinking",
				"Better understanding of complex systems",
				"All of the above",
			},
			answerIndex: 3,
			explanation: fmt.Sprintf("This question tests your awareness of the value and benefits that come from learning %s.", topic),
		},
		{
			question:     fmt.Sprintf("Explain why understanding the fundamentals of %s is important for success.", topic),
			questionType: model.ShortAnswer,
			answer:       fmt.Sprintf("Understanding the fundamentals of %s is crucial because it provides the foundation for advanced learning, enables problem-solving in new situations, helps in making informed decisions, and allows for creative application of knowledge. Without solid fundamentals, it's difficult to build expertise or adapt to new challenges in the field.", topic),
			explanation:  fmt.Sprintf("This question evaluates your understanding of why foundational knowledge is essential for mastery and success in %s.", topic),
		},
		{
			question:     fmt.Sprintf("What is the most important factor to consider when working with %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				"Speed and efficiency",
				"Accuracy and precision",
				"Cost and resources",
				"All factors are equally important",
			},
			answerIndex: 1,
			explanation: fmt.Sprintf("This question tests your understanding of the critical aspects that make %s effective and reliable.", topic),
		},
		{
			question:     fmt.Sprintf("Compare and contrast %s with other related fields. What makes it unique?", topic),
			questionType: model.ShortAnswer,
			answer:       fmt.Sprintf("%s is unique because it combines theoretical knowledge with practical application in ways that other fields may not. While related fields might focus on specific aspects, %s provides a comprehensive approach that integrates multiple perspectives. Its uniqueness lies in its ability to bridge theory and practice, offering both analytical depth and real-world relevance.", topic, topic),
			explanation:  fmt.Sprintf("This question tests your ability to analyze and compare %s with related fields, demonstrating understanding of its distinctive characteristics and value.", topic),
		},
		{
			question:     fmt.Sprintf("What is the biggest challenge students typically face when learning %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				"Understanding the basic concepts",
				"Applying knowledge to practical problems",
				"Memorizing all the details",
				"Keeping up with the pace of instruction",
			},
			answerIndex: 1,
			explanation: fmt.Sprintf("This question tests your awareness of common learning challenges and the importance of practical application in %s.", topic),
		},
		{
			question:     fmt.Sprintf("Describe the future potential and trends in %s. What developments do you expect?", topic),
			questionType: model.ShortAnswer,
			answer:       fmt.Sprintf("The future of %s looks promising with several key trends emerging: increased integration with technology, greater emphasis on practical applications, more interdisciplinary approaches, and continuous evolution to meet changing needs. I expect developments in automation, digital tools, and new methodologies that will make %s more accessible and effective for learners and practitioners.", topic, topic),
			explanation:  fmt.Sprintf("This question evaluates your ability to think critically about the future direction of %s and demonstrate understanding of current trends and potential developments.", topic),
		},
		{
			question:     fmt.Sprintf("What role does critical thinking play in %s?", topic),
			questionType: model.MultipleChoice,
			options: []string{
				fmt.Sprintf("Critical thinking is optional in %s", topic),
				fmt.Sprintf("Critical thinking is essential for success in %s", topic),
				fmt.Sprintf("Critical thinking only applies to advanced %s", topic),
				"Critical thinking is more important in other subjects",
			},
			answerIndex: 1,
			explanation: fmt.Sprintf("This question evaluates your understanding of the importance of analytical and critical thinking skills in mastering %s.", topic),
		},
	}
}

// FallbackQuizQuestions 模板出题，超过模板数时循环并加序号前缀
func FallbackQuizQuestions(topic string, numQuestions int) []GeneratedQuestion {
	templates := quizTemplates(topic)
	questions := make([]GeneratedQuestion, 0, numQuestions)

	for i := 0; i < numQuestions; i++ {
		t := templates[i%len(templates)]

		questionText := t.question
		if i >= len(templates) {
			questionText = fmt.Sprintf("Question %d: %s", i+1, questionText)
		}

		q := GeneratedQuestion{
			Question:    questionText,
			Type:        string(t.questionType),
			Explanation: t.explanation,
		}
		if t.questionType == model.MultipleChoice {
			q.Options = t.options
			q.Answer = t.options[t.answerIndex]
		} else {
			q.Answer = t.answer
		}
		questions = append(questions, q)
	}

	return questions
}

// ExtractQuestionsJSON 从生成文本中截取首个'{'到末个'}'之间的JSON并校验题目
func ExtractQuestionsJSON(text string) ([]GeneratedQuestion, bool) {
	raw := extractJSONObject(text)
	if raw == nil {
		return nil, false
	}

	var parsed struct {
		Questions []GeneratedQuestion `json:"questions"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, false
	}

	valid := make([]GeneratedQuestion, 0, len(parsed.Questions))
	for _, q := range parsed.Questions {
		if validateQuestion(&q) {
			valid = append(valid, q)
		}
	}
	if len(valid) == 0 {
		return nil, false
	}
	return valid, true
}

func extractJSONObject(text string) json.RawMessage {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil
	}
	return json.RawMessage(text[start : end+1])
}

func validateQuestion(q *GeneratedQuestion) bool {
	if q.Question == "" || q.Answer == "" {
		return false
	}
	if q.Type != string(model.MultipleChoice) && q.Type != string(model.ShortAnswer) {
		return false
	}
	if q.Type == string(model.MultipleChoice) && len(q.Options) < 2 {
		return false
	}
	return true
}

var evaluationStopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "all": true, "can": true, "had": true, "her": true, "was": true,
	"one": true, "our": true, "out": true, "day": true, "get": true, "has": true,
	"him": true, "his": true, "how": true, "its": true, "may": true, "new": true,
	"now": true, "old": true, "see": true, "two": true, "way": true, "who": true,
	"boy": true, "did": true, "man": true, "oil": true, "sit": true, "try": true,
	"use": true, "very": true, "want": true, "with": true, "have": true, "this": true,
	"will": true, "your": true, "from": true, "they": true, "know": true, "been": true,
	"good": true, "much": true, "some": true, "time": true, "when": true, "come": true,
	"here": true, "just": true, "like": true, "long": true, "make": true, "many": true,
	"over": true, "such": true, "take": true, "than": true, "them": true, "well": true,
	"were": true,
}

// EvaluateAnswerFallback 关键词启发式评分：
// 关键词覆盖占60分，答案长度最多加20分，命中标准答案前5词再加20分，总分60及格
func EvaluateAnswerFallback(studentAnswer, correctAnswer string) *AnswerEvaluation {
	studentLower := strings.ToLower(studentAnswer)
	correctLower := strings.ToLower(correctAnswer)

	var keyWords []string
	for _, word := range strings.Fields(correctLower) {
		if len(word) > 3 && !evaluationStopwords[word] {
			keyWords = append(keyWords, word)
		}
	}

	matches := 0
	for _, word := range keyWords {
		if strings.Contains(studentLower, word) {
			matches++
		}
	}

	keywordScore := 0.0
	if len(keyWords) > 0 {
		keywordScore = float64(matches) / float64(len(keyWords)) * 60
	}

	lengthScore := float64(len(studentAnswer)) / 10
	if lengthScore > 20 {
		lengthScore = 20
	}

	similarityScore := 0.0
	correctWords := strings.Fields(correctLower)
	leading := correctWords
	if len(leading) > 5 {
		leading = leading[:5]
	}
	for _, word := range leading {
		if strings.Contains(studentLower, word) {
			similarityScore = 20
			break
		}
	}

	totalScore := keywordScore + lengthScore + similarityScore
	if totalScore > 100 {
		totalScore = 100
	}

	isCorrect := totalScore >= 60

	eval := &AnswerEvaluation{
		IsCorrect: isCorrect,
		Score:     int(totalScore),
	}
	if isCorrect {
		eval.Feedback = "Good answer! You demonstrate understanding of the key concepts."
		eval.Suggestions = "Consider providing more specific examples or details to strengthen your response."
	} else {
		eval.Feedback = "Your answer shows some understanding but could be more comprehensive."
		eval.Suggestions = "Try to include more key concepts and provide specific examples or explanations."
	}
	return eval
}
