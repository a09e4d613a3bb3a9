package mapping

// Field is a canonical semantic target that heterogeneous headers map onto.
type Field string

const (
	FieldName      Field = "name"
	FieldPhone     Field = "phone"
	FieldOrg       Field = "org"
	FieldRegion    Field = "region"
	FieldRoleTitle Field = "role_title"
	FieldRemoteID  Field = "remote_id"
	FieldRoom      Field = "room"
	FieldCourse    Field = "course"
	FieldDate      Field = "date"
	FieldTime      Field = "time"
	FieldTeacher   Field = "teacher"
)

// EnrollmentFields are the targets of roster sources.
var EnrollmentFields = []Field{FieldPhone, FieldName, FieldOrg, FieldRegion, FieldRoleTitle, FieldRemoteID, FieldRoom}

// ScheduleFields are the targets of schedule tables.
var ScheduleFields = []Field{FieldDate, FieldTime, FieldCourse, FieldTeacher}

// aliases holds, per field, the exact synonyms (matched against the whole
// normalized header) and the keywords (matched by containment). Entries are
// stored already normalized.
type aliases struct {
	exact    []string
	keywords []string
}

var aliasTable = map[Field]aliases{
	FieldName: {
		exact:    []string{"姓名", "名字", "学员姓名", "name", "full name"},
		keywords: []string{"姓名", "名字"},
	},
	FieldPhone: {
		exact:    []string{"手机", "手机号", "手机号码", "联系电话", "电话", "联系方式", "phone", "mobile", "tel", "telephone"},
		keywords: []string{"手机", "电话", "phone", "mobile"},
	},
	FieldOrg: {
		exact:    []string{"单位", "公司", "组织", "工作单位", "单位名称", "org", "organization", "organisation", "company"},
		keywords: []string{"单位", "公司", "组织", "organization", "company"},
	},
	FieldRegion: {
		exact:    []string{"地区", "区域", "省份", "地市", "region", "province", "area"},
		keywords: []string{"地区", "区域", "省份", "region", "province"},
	},
	FieldRoleTitle: {
		exact:    []string{"职务", "职位", "职称", "岗位", "title", "role", "position", "job title"},
		keywords: []string{"职务", "职位", "职称", "岗位", "position"},
	},
	FieldRemoteID: {
		exact:    []string{"远程网id", "远程id", "远程网账号", "remote id", "remote_id", "remoteid"},
		keywords: []string{"远程", "remote"},
	},
	FieldRoom: {
		exact:    []string{"住宿偏好", "住宿", "住宿要求", "房型", "room", "room preference", "accommodation"},
		keywords: []string{"住宿", "房型", "room", "accommodation"},
	},
	FieldCourse: {
		exact:    []string{"课程", "课程名称", "课程内容", "课题", "专题", "内容", "course", "subject", "topic"},
		keywords: []string{"课程", "课题", "专题", "course", "subject", "topic"},
	},
	FieldDate: {
		exact:    []string{"日期", "时间日期", "date", "day"},
		keywords: []string{"日期", "date"},
	},
	FieldTime: {
		exact:    []string{"时间", "时段", "授课时间", "time", "period"},
		keywords: []string{"时间", "时段", "time"},
	},
	FieldTeacher: {
		exact:    []string{"授课人", "授课教师", "授课老师", "讲师", "老师", "教师", "主讲", "主讲人", "teacher", "lecturer", "speaker", "instructor"},
		keywords: []string{"讲师", "老师", "教师", "主讲", "授课人", "teacher", "lecturer", "speaker", "instructor"},
	},
}

// priority orders keyword matching when a header contains keywords of more
// than one field.
var priority = []Field{
	FieldPhone, FieldName, FieldOrg, FieldRegion, FieldRoleTitle, FieldRemoteID, FieldRoom,
	FieldDate, FieldTime, FieldCourse, FieldTeacher,
}
