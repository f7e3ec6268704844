package blog

// Content a new institute page starts with.
const (
	DefaultInstituteName = "Kartik Classes01"
	DefaultLocation      = "Rajendra Nagar SD Pataudi, Farux, Bhiwani, India, Pin Code: 800004"
	DefaultDescription   = "Founded with a mission to deliver quality education, our tuition offers personalized guidance that nurtures the academic potential of every student. We emphasize strong academic foundations and conceptual clarity. With a team of highly qualified teachers and small batch sizes, we ensure each student receives individual attention. Studies easy to understand. Our classrooms are equipped with updated technology and we continuously update our curriculum to match board and competitive exam patterns. Over the years, we have proudly nurtured many toppers and successful achievers. We foster a learning environment that encourages every student to reach their full potential, helping them grow into responsible individuals. We believe in continuous improvement in parent-student learning journeys. We motivate our students to maintain academic rigor. We invite every parent and student to be a part of this transformational learning journey."
	DefaultTeacherNames  = "Mr. GUDDU, Ms.PRAKASH SHARMA, Mr. Arun"
	DefaultMapLink       = "https://maps.google.com"

	DefaultSummary = "Our students come from varied backgrounds but share a thirst for excellence. They participate actively in class discussions, show consistent academic growth, and perform well in board and competitive exams. Many of them have secured top ranks and scholarships, making our institute proud. With continuous support and guidance, we help them achieve their goals and prepare them for a bright academic future."
)

func defaultInstitute() *InstituteInfo {
	return &InstituteInfo{
		Name:         DefaultInstituteName,
		Location:     DefaultLocation,
		Description:  DefaultDescription,
		TeacherNames: DefaultTeacherNames,
		MapLink:      DefaultMapLink,
	}
}

func defaultSummary() *StudentSummary {
	return &StudentSummary{Summary: DefaultSummary}
}
